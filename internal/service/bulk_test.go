package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/auth"
	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/service"
	"github.com/jobhive/jobhive/internal/store"
	"github.com/jobhive/jobhive/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("bulk transitions", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.TransitionService

		admin    auth.Actor
		employer auth.Actor
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		srv = service.NewTransitionService(s, nil)

		admin = auth.Actor{ID: uuid.New(), Role: model.RoleAdmin}
		employer = auth.Actor{ID: uuid.New(), Role: model.RoleEmployer}
	})

	AfterAll(func() {
		_ = s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM jobs;")
		gormdb.Exec("DELETE FROM applications;")
	})

	It("collects per-item outcomes without aborting the batch", func() {
		approvable := seedJob(s, employer.ID, model.JobStatusPending)
		stuckInDraft := seedJob(s, employer.ID, model.JobStatusDraft)
		missing := uuid.New()

		result, err := srv.ApplyBulk(context.TODO(), service.KindJob,
			[]uuid.UUID{approvable.ID, stuckInDraft.ID, missing}, model.JobStatusActive, admin)
		Expect(err).To(BeNil())

		Expect(result.Succeeded).To(ConsistOf([]uuid.UUID{approvable.ID}))
		Expect(result.Failed).To(HaveLen(2))

		kinds := map[uuid.UUID]string{}
		for _, f := range result.Failed {
			kinds[f.ID] = f.Kind
		}
		Expect(kinds[stuckInDraft.ID]).To(Equal(service.KindInvalidTransition))
		Expect(kinds[missing]).To(Equal(service.KindNotFound))

		// the successful item really moved
		job, err := s.Job().Get(context.TODO(), approvable.ID)
		Expect(err).To(BeNil())
		Expect(job.Status).To(Equal(model.JobStatusActive))
	})

	It("deduplicates repeated ids", func() {
		job := seedJob(s, employer.ID, model.JobStatusPending)

		result, err := srv.ApplyBulk(context.TODO(), service.KindJob,
			[]uuid.UUID{job.ID, job.ID, job.ID}, model.JobStatusActive, admin)
		Expect(err).To(BeNil())
		Expect(result.Succeeded).To(HaveLen(1))
		Expect(result.Failed).To(BeEmpty())
	})

	It("rejects batches over the configured limit", func() {
		limitedSrv := service.NewTransitionService(s, nil, service.WithBulkLimit(2))

		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		_, err := limitedSrv.ApplyBulk(context.TODO(), service.KindJob, ids, model.JobStatusActive, admin)
		Expect(service.ErrorKind(err)).To(Equal(service.KindTooManyItems))
	})

	It("counts duplicates once against the limit", func() {
		limitedSrv := service.NewTransitionService(s, nil, service.WithBulkLimit(2))

		job := seedJob(s, employer.ID, model.JobStatusPending)
		other := seedJob(s, employer.ID, model.JobStatusPending)

		result, err := limitedSrv.ApplyBulk(context.TODO(), service.KindJob,
			[]uuid.UUID{job.ID, job.ID, other.ID}, model.JobStatusActive, admin)
		Expect(err).To(BeNil())
		Expect(result.Succeeded).To(HaveLen(2))
	})

	It("rejects an unknown entity kind", func() {
		_, err := srv.ApplyBulk(context.TODO(), service.EntityKind("invoice"), []uuid.UUID{uuid.New()}, "paid", admin)
		Expect(service.ErrorKind(err)).To(Equal(service.KindInvalidArgument))
	})

	It("transitions applications in bulk", func() {
		job := seedJob(s, employer.ID, model.JobStatusActive)
		first := seedApplication(s, job.ID, uuid.New(), model.ApplicationStatusPending)
		second := seedApplication(s, job.ID, uuid.New(), model.ApplicationStatusAccepted)

		result, err := srv.ApplyBulk(context.TODO(), service.KindApplication,
			[]uuid.UUID{first.ID, second.ID}, model.ApplicationStatusRejected, employer)
		Expect(err).To(BeNil())
		Expect(result.Succeeded).To(ConsistOf([]uuid.UUID{first.ID}))
		Expect(result.Failed).To(HaveLen(1))
		Expect(result.Failed[0].Kind).To(Equal(service.KindInvalidTransition))
	})
})
