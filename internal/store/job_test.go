package store_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertJobStm         = "INSERT INTO jobs (id, owner_id, title, company, description, status, created_at, updated_at) VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '2024-01-01 10:00:00', '2024-01-01 10:00:00');"
	insertJobWithPayStm  = "INSERT INTO jobs (id, owner_id, title, company, status, working_type, salary_min, salary_max, created_at, updated_at) VALUES ('%s', '%s', '%s', 'acme', '%s', '%s', %d, %d, '2024-01-01 10:00:00', '2024-01-01 10:00:00');"
	insertActiveUserStm  = "INSERT INTO users (id, role, account_status, name, email, created_at, updated_at) VALUES ('%s', 'employer', 'active', 'emp', '%s', '2024-01-01 10:00:00', '2024-01-01 10:00:00');"
	insertBannedUserStm  = "INSERT INTO users (id, role, account_status, name, email, created_at, updated_at) VALUES ('%s', 'employer', 'banned', 'emp', '%s', '2024-01-01 10:00:00', '2024-01-01 10:00:00');"
)

var _ = Describe("job store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		_ = s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM jobs;")
		gormdb.Exec("DELETE FROM users;")
	})

	Context("list", func() {
		It("lists all the jobs", func() {
			owner := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "backend dev", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "frontend dev", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter(), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
		})

		It("filters by status", func() {
			owner := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "backend dev", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "frontend dev", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByStatus("active"), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Status).To(Equal("active"))
		})

		It("filters by owner", func() {
			owner := uuid.NewString()
			other := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "backend dev", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), other, "frontend dev", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())

			ownerID, _ := uuid.Parse(owner)
			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByOwner(ownerID), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].OwnerID.String()).To(Equal(owner))
		})

		It("matches text case-insensitively across title, company and description", func() {
			owner := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "Senior Gopher", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "data analyst", "Gopher Labs", "", "active"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "data analyst", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByText("gopher"), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
		})

		It("filters by salary range and working type", func() {
			owner := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobWithPayStm, uuid.NewString(), owner, "low pay", "active", "remote", 1000, 2000))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobWithPayStm, uuid.NewString(), owner, "high pay", "active", "full-time", 5000, 9000))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().BySalaryMin(4000), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Title).To(Equal("high pay"))

			jobs, err = s.Job().List(context.TODO(), store.NewJobQueryFilter().ByRemoteOnly(), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Title).To(Equal("low pay"))
		})

		It("restricts public listings to active jobs of active owners", func() {
			activeOwner := uuid.NewString()
			bannedOwner := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertActiveUserStm, activeOwner, "active@corp.test"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertBannedUserStm, bannedOwner, "banned@corp.test"))
			Expect(tx.Error).To(BeNil())

			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), activeOwner, "visible", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), activeOwner, "still pending", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), bannedOwner, "hidden", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().PubliclyVisible(), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Title).To(Equal("visible"))
		})

		It("paginates with a stable order", func() {
			owner := uuid.NewString()
			ids := []string{}
			for i := 0; i < 5; i++ {
				id := uuid.NewString()
				ids = append(ids, id)
				tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, owner, fmt.Sprintf("job-%d", i), "acme", "", "active"))
				Expect(tx.Error).To(BeNil())
			}

			// all rows share created_at, the id tie breaker decides
			all, err := s.Job().List(context.TODO(), store.NewJobQueryFilter(), store.NewJobQueryOptions().WithOrderBy("created_at", true))
			Expect(err).To(BeNil())
			Expect(all).To(HaveLen(5))

			collected := []string{}
			for page := 1; page <= 3; page++ {
				opts := store.NewJobQueryOptions().WithOrderBy("created_at", true).WithPagination(page, 2)
				jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter(), opts)
				Expect(err).To(BeNil())
				for _, j := range jobs {
					collected = append(collected, j.ID.String())
				}
			}

			Expect(collected).To(HaveLen(5))
			for i, j := range all {
				Expect(collected[i]).To(Equal(j.ID.String()))
			}
		})
	})

	Context("counts", func() {
		It("buckets counts by status", func() {
			owner := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "a", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "b", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), owner, "c", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			counts, err := s.Job().CountByStatus(context.TODO(), store.NewJobQueryFilter())
			Expect(err).To(BeNil())

			byStatus := map[string]int64{}
			for _, c := range counts {
				byStatus[c.Status] = c.Count
			}
			Expect(byStatus["pending"]).To(Equal(int64(2)))
			Expect(byStatus["active"]).To(Equal(int64(1)))
		})
	})

	Context("update status", func() {
		It("updates when the expected status matches", func() {
			id := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, uuid.NewString(), "a", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())

			jobID, _ := uuid.Parse(id)
			job, err := s.Job().UpdateStatus(context.TODO(), jobID, "pending", map[string]interface{}{"status": "active"})
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal("active"))
		})

		It("fails with ErrStaleStatus when the status changed underneath", func() {
			id := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, uuid.NewString(), "a", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobID, _ := uuid.Parse(id)
			_, err := s.Job().UpdateStatus(context.TODO(), jobID, "pending", map[string]interface{}{"status": "rejected"})
			Expect(err).To(MatchError(store.ErrStaleStatus))
		})

		It("writes the rejection reason together with the status", func() {
			id := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, uuid.NewString(), "a", "acme", "", "pending"))
			Expect(tx.Error).To(BeNil())

			jobID, _ := uuid.Parse(id)
			job, err := s.Job().UpdateStatus(context.TODO(), jobID, "pending", map[string]interface{}{
				"status":           "rejected",
				"rejection_reason": "duplicate posting",
			})
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal("rejected"))
			Expect(job.RejectionReason).To(Equal("duplicate posting"))
		})
	})

	Context("counters", func() {
		It("increments and decrements atomically", func() {
			id := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, uuid.NewString(), "a", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobID, _ := uuid.Parse(id)
			Expect(s.Job().Increment(context.TODO(), jobID, store.JobCounterViews, 1)).To(BeNil())
			Expect(s.Job().Increment(context.TODO(), jobID, store.JobCounterApplications, 1)).To(BeNil())
			Expect(s.Job().Increment(context.TODO(), jobID, store.JobCounterApplications, -1)).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.ViewCount).To(Equal(int64(1)))
			Expect(job.ApplicationCount).To(Equal(int64(0)))
		})

		It("rejects unknown counters", func() {
			err := s.Job().Increment(context.TODO(), uuid.New(), "status", 1)
			Expect(err).ToNot(BeNil())
		})
	})

	Context("get and delete", func() {
		It("returns ErrRecordNotFound for a missing job", func() {
			_, err := s.Job().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("deletes a job", func() {
			id := uuid.NewString()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, uuid.NewString(), "a", "acme", "", "active"))
			Expect(tx.Error).To(BeNil())

			jobID, _ := uuid.Parse(id)
			Expect(s.Job().Delete(context.TODO(), jobID)).To(BeNil())

			_, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("create", func() {
		It("persists a job", func() {
			job, err := s.Job().Create(context.TODO(), model.Job{
				ID:      uuid.New(),
				OwnerID: uuid.New(),
				Title:   "platform engineer",
				Company: "acme",
				Status:  model.JobStatusDraft,
			})
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusDraft))

			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Title).To(Equal("platform engineer"))
		})
	})
})
