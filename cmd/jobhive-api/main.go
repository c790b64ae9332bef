package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.S().Errorf("command failed: %v", err)
		os.Exit(1)
	}
}
