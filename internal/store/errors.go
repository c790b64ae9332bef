package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
	// ErrStaleStatus is returned by conditional status updates when the row's
	// status no longer matches the expected value.
	ErrStaleStatus = errors.New("status changed concurrently")
)
