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

// withJobGetHook wraps the store so that every successful job Get invokes
// hook before returning, letting tests interleave a concurrent write between
// the engine's read and its conditional update.
func withJobGetHook(s store.Store, hook func(*model.Job)) store.Store {
	return &jobGetHookStore{Store: s, job: &jobGetHookJobStore{Job: s.Job(), hook: hook}}
}

type jobGetHookStore struct {
	store.Store
	job store.Job
}

func (s *jobGetHookStore) Job() store.Job {
	return s.job
}

type jobGetHookJobStore struct {
	store.Job
	hook func(*model.Job)
}

func (s *jobGetHookJobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.Job.Get(ctx, id)
	if err == nil && s.hook != nil {
		s.hook(job)
	}
	return job, err
}

func seedJob(s store.Store, owner uuid.UUID, status string) *model.Job {
	job, err := s.Job().Create(context.TODO(), model.Job{
		ID:      uuid.New(),
		OwnerID: owner,
		Title:   "backend engineer",
		Company: "acme",
		Status:  status,
	})
	Expect(err).To(BeNil())
	return job
}

func seedApplication(s store.Store, jobID, applicant uuid.UUID, status string) *model.Application {
	application, err := s.Application().Create(context.TODO(), model.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		ApplicantID: applicant,
		Status:      status,
	})
	Expect(err).To(BeNil())
	return application
}

var _ = Describe("transition service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.TransitionService

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

		srv = service.NewTransitionService(s, nil)

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
	})

	Context("jobs", func() {
		It("lets an admin approve a pending job", func() {
			job := seedJob(s, employer.ID, model.JobStatusPending)

			updated, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusActive, admin, nil)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusActive))
		})

		It("treats a same-status request as a no-op", func() {
			job := seedJob(s, employer.ID, model.JobStatusActive)

			updated, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusActive, admin, nil)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusActive))
		})

		It("refuses an edge the graph does not declare", func() {
			job := seedJob(s, employer.ID, model.JobStatusDraft)

			_, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusActive, admin, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidTransition{}))
			Expect(service.ErrorKind(err)).To(Equal(service.KindInvalidTransition))
		})

		It("requires a reason to reject", func() {
			job := seedJob(s, employer.ID, model.JobStatusPending)

			_, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusRejected, admin, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindMissingField))

			updated, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusRejected, admin, &service.TransitionExtra{RejectionReason: "spam posting"})
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusRejected))
			Expect(updated.RejectionReason).To(Equal("spam posting"))
		})

		It("clears the rejection reason when leaving rejected", func() {
			graph := service.DefaultJobGraph()
			graph[model.JobStatusRejected] = []string{model.JobStatusPending}
			reopeningSrv := service.NewTransitionService(s, nil, service.WithJobGraph(graph))

			job := seedJob(s, employer.ID, model.JobStatusPending)
			_, err := reopeningSrv.TransitionJob(context.TODO(), job.ID, model.JobStatusRejected, admin, &service.TransitionExtra{RejectionReason: "incomplete"})
			Expect(err).To(BeNil())

			updated, err := reopeningSrv.TransitionJob(context.TODO(), job.ID, model.JobStatusPending, admin, nil)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusPending))
			Expect(updated.RejectionReason).To(BeEmpty())
		})

		It("returns NotFound for a missing job", func() {
			_, err := srv.TransitionJob(context.TODO(), uuid.New(), model.JobStatusActive, admin, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindNotFound))
		})

		It("lets an employer submit and close their own job", func() {
			job := seedJob(s, employer.ID, model.JobStatusDraft)
			updated, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusPending, employer, nil)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusPending))

			active := seedJob(s, employer.ID, model.JobStatusActive)
			updated, err = srv.TransitionJob(context.TODO(), active.ID, model.JobStatusClosed, employer, nil)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusClosed))
		})

		It("keeps moderation decisions away from employers", func() {
			job := seedJob(s, employer.ID, model.JobStatusPending)

			_, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusActive, employer, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))

			_, err = srv.TransitionJob(context.TODO(), job.ID, model.JobStatusRejected, employer, &service.TransitionExtra{RejectionReason: "self reject"})
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("checks permission before graph validity", func() {
			otherEmployer := auth.Actor{ID: uuid.New(), Role: model.RoleEmployer}
			job := seedJob(s, employer.ID, model.JobStatusDraft)

			// draft -> closed is also an invalid edge, but ownership is
			// checked first
			_, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusClosed, otherEmployer, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("refuses job seekers entirely", func() {
			job := seedJob(s, employer.ID, model.JobStatusPending)

			_, err := srv.TransitionJob(context.TODO(), job.ID, model.JobStatusClosed, jobseeker, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("reports a conflict when the status changes between read and write", func() {
			job := seedJob(s, employer.ID, model.JobStatusPending)

			// another moderator rejects the job right after the engine reads it
			fired := false
			racing := withJobGetHook(s, func(got *model.Job) {
				if fired {
					return
				}
				fired = true
				_, err := s.Job().UpdateStatus(context.TODO(), got.ID, model.JobStatusPending, map[string]interface{}{
					"status":           model.JobStatusRejected,
					"rejection_reason": "duplicate posting",
				})
				Expect(err).To(BeNil())
			})

			racingSrv := service.NewTransitionService(racing, nil)
			_, err := racingSrv.TransitionJob(context.TODO(), job.ID, model.JobStatusActive, admin, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindConflict))

			// exactly one writer won
			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.JobStatusRejected))
			Expect(stored.RejectionReason).To(Equal("duplicate posting"))
		})
	})

	Context("applications", func() {
		It("lets the owning employer advance an application with annotations", func() {
			job := seedJob(s, employer.ID, model.JobStatusActive)
			application := seedApplication(s, job.ID, jobseeker.ID, model.ApplicationStatusPending)

			rating := 4
			notes := "good take-home"
			updated, err := srv.TransitionApplication(context.TODO(), application.ID, model.ApplicationStatusInterviews, employer, &service.TransitionExtra{Rating: &rating, Notes: &notes})
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.ApplicationStatusInterviews))
			Expect(updated.Rating).ToNot(BeNil())
			Expect(*updated.Rating).To(Equal(4))
			Expect(updated.Notes).To(Equal("good take-home"))
		})

		It("rejects an out-of-range rating", func() {
			job := seedJob(s, employer.ID, model.JobStatusActive)
			application := seedApplication(s, job.ID, jobseeker.ID, model.ApplicationStatusPending)

			rating := 7
			_, err := srv.TransitionApplication(context.TODO(), application.ID, model.ApplicationStatusInterviews, employer, &service.TransitionExtra{Rating: &rating})
			Expect(service.ErrorKind(err)).To(Equal(service.KindInvalidArgument))
		})

		It("refuses another employer's application", func() {
			otherEmployer := auth.Actor{ID: uuid.New(), Role: model.RoleEmployer}
			job := seedJob(s, employer.ID, model.JobStatusActive)
			application := seedApplication(s, job.ID, jobseeker.ID, model.ApplicationStatusPending)

			_, err := srv.TransitionApplication(context.TODO(), application.ID, model.ApplicationStatusInterviews, otherEmployer, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("refuses job seekers", func() {
			job := seedJob(s, employer.ID, model.JobStatusActive)
			application := seedApplication(s, job.ID, jobseeker.ID, model.ApplicationStatusPending)

			_, err := srv.TransitionApplication(context.TODO(), application.ID, model.ApplicationStatusInterviews, jobseeker, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})

		It("exempts orphaned applications from moderation, even for admins", func() {
			application, err := s.Application().Create(context.TODO(), model.Application{
				ID:          uuid.New(),
				JobID:       uuid.New(),
				ApplicantID: jobseeker.ID,
				Status:      model.ApplicationStatusInterviews,
				Orphaned:    true,
			})
			Expect(err).To(BeNil())

			_, err = srv.TransitionApplication(context.TODO(), application.ID, model.ApplicationStatusRejected, admin, nil)
			Expect(service.ErrorKind(err)).To(Equal(service.KindForbidden))
		})
	})
})
