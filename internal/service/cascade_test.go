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

var _ = Describe("cascades", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		jobSrv *service.JobService
		appSrv *service.ApplicationService

		admin     auth.Actor
		employer  auth.Actor
		jobseeker auth.Actor
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		cascade := service.NewCascadeService(s, nil)
		jobSrv = service.NewJobService(s, cascade)
		appSrv = service.NewApplicationService(s)

		admin = auth.Actor{ID: uuid.New(), Role: model.RoleAdmin}
		employer = auth.Actor{ID: uuid.New(), Role: model.RoleEmployer}
		jobseeker = auth.Actor{ID: uuid.New(), Role: model.RoleJobSeeker}
	})

	AfterAll(func() {
		_ = s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM jobs;")
		gormdb.Exec("DELETE FROM applications;")
		gormdb.Exec("DELETE FROM users;")
	})

	Context("job deletion", func() {
		It("orphans every application of the deleted job", func() {
			job := seedJob(s, employer.ID, model.JobStatusActive)
			kept := seedJob(s, employer.ID, model.JobStatusActive)

			first := seedApplication(s, job.ID, uuid.New(), model.ApplicationStatusPending)
			second := seedApplication(s, job.ID, uuid.New(), model.ApplicationStatusInterviews)
			untouched := seedApplication(s, kept.ID, uuid.New(), model.ApplicationStatusPending)

			Expect(jobSrv.DeleteJob(context.TODO(), job.ID, employer)).To(BeNil())

			_, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(MatchError(store.ErrRecordNotFound))

			for _, id := range []uuid.UUID{first.ID, second.ID} {
				application, err := s.Application().Get(context.TODO(), id)
				Expect(err).To(BeNil())
				Expect(application.Orphaned).To(BeTrue())
				// the job id stays for display
				Expect(application.JobID).To(Equal(job.ID))
			}

			application, err := s.Application().Get(context.TODO(), untouched.ID)
			Expect(err).To(BeNil())
			Expect(application.Orphaned).To(BeFalse())
		})

		It("lets the applicant delete an orphaned application in any status", func() {
			job := seedJob(s, employer.ID, model.JobStatusActive)
			application := seedApplication(s, job.ID, jobseeker.ID, model.ApplicationStatusAccepted)

			Expect(jobSrv.DeleteJob(context.TODO(), job.ID, admin)).To(BeNil())
			Expect(appSrv.Withdraw(context.TODO(), application.ID, jobseeker)).To(BeNil())
		})

		It("refuses deletion by a non-owning employer", func() {
			other := auth.Actor{ID: uuid.New(), Role: model.RoleEmployer}
			job := seedJob(s, employer.ID, model.JobStatusActive)

			err := jobSrv.DeleteJob(context.TODO(), job.ID, other)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("returns NotFound for a missing job", func() {
			err := jobSrv.DeleteJob(context.TODO(), uuid.New(), admin)
			Expect(service.ErrorKind(err)).To(Equal(service.KindNotFound))
		})
	})

	Context("account status", func() {
		var userSrv *service.UserService

		BeforeAll(func() {
			userSrv = service.NewUserService(s, service.NewCascadeService(s, nil))
		})

		seedUser := func(role string) *model.User {
			user, err := s.User().Create(context.TODO(), model.User{
				ID:    uuid.New(),
				Role:  role,
				Name:  "test user",
				Email: uuid.NewString() + "@mail.test",
			})
			Expect(err).To(BeNil())
			return user
		}

		It("lets an admin ban an account without touching its data", func() {
			user := seedUser(model.RoleEmployer)
			job := seedJob(s, user.ID, model.JobStatusActive)

			updated, err := userSrv.SetAccountStatus(context.TODO(), user.ID, model.AccountStatusBanned, admin)
			Expect(err).To(BeNil())
			Expect(updated.AccountStatus).To(Equal(model.AccountStatusBanned))

			// jobs survive deactivation, only public search hides them
			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.JobStatusActive))

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().PubliclyVisible(), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(BeEmpty())
		})

		It("is idempotent for the current status", func() {
			user := seedUser(model.RoleJobSeeker)

			updated, err := userSrv.SetAccountStatus(context.TODO(), user.ID, model.AccountStatusActive, admin)
			Expect(err).To(BeNil())
			Expect(updated.AccountStatus).To(Equal(model.AccountStatusActive))
		})

		It("is admin-only", func() {
			user := seedUser(model.RoleJobSeeker)

			_, err := userSrv.SetAccountStatus(context.TODO(), user.ID, model.AccountStatusBanned, employer)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("rejects unknown statuses", func() {
			user := seedUser(model.RoleJobSeeker)

			_, err := userSrv.SetAccountStatus(context.TODO(), user.ID, "suspended", admin)
			Expect(service.ErrorKind(err)).To(Equal(service.KindInvalidArgument))
		})

		It("returns NotFound for a missing user", func() {
			_, err := userSrv.SetAccountStatus(context.TODO(), uuid.New(), model.AccountStatusBanned, admin)
			Expect(service.ErrorKind(err)).To(Equal(service.KindNotFound))
		})
	})
})
