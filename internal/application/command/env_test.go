package command

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/application"
	"github.com/collab-hub/collab-portal/internal/domain/authz"
	"github.com/collab-hub/collab-portal/internal/domain/opportunity"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// testEnv bundles the fakes one workflow test needs.
type testEnv struct {
	appRepo      *fakeAppRepo
	progressRepo *fakeProgressRepo
	registry     *fakeRegistry
	store        *fakeStore
	gate         *authz.Gate
	ids          *seqIDs
	published    *capturePublisher
	log          *logger.Logger
}

func newTestEnv() *testEnv {
	appRepo := newFakeAppRepo()
	registry := newFakeRegistry()

	return &testEnv{
		appRepo:      appRepo,
		progressRepo: newFakeProgressRepo(appRepo),
		registry:     registry,
		store:        newFakeStore(),
		gate:         authz.NewGate(registry),
		ids:          &seqIDs{},
		published:    &capturePublisher{},
		log:          logger.New(logger.Options{Output: io.Discard}),
	}
}

var (
	student = actor.Actor{ID: "stu-1", DisplayName: "Aruzhan S.", Role: actor.RoleStudent}

	academiaPoster = actor.Actor{ID: "prof-1", DisplayName: "Dr. Bekova", Role: actor.RoleAcademia}
	industryPoster = actor.Actor{ID: "eng-1", DisplayName: "T. Omarov", Role: actor.RoleIndustry}
)

// seedProject registers a project listing and returns its ref.
func (e *testEnv) seedProject(t *testing.T, id string, poster actor.Actor) opportunity.Ref {
	t.Helper()
	ref, err := opportunity.NewRef("project", id)
	require.NoError(t, err)

	e.registry.add(opportunity.Resolution{
		Ref:        ref,
		Exists:     true,
		Title:      "Campus App",
		PosterID:   poster.ID,
		PosterRole: poster.Role,
	})
	return ref
}

// seedJob registers a job listing and returns its ref.
func (e *testEnv) seedJob(t *testing.T, id string, poster actor.Actor) opportunity.Ref {
	t.Helper()
	ref, err := opportunity.NewRef("job", id)
	require.NoError(t, err)

	e.registry.add(opportunity.Resolution{
		Ref:        ref,
		Exists:     true,
		Title:      "Backend Intern",
		PosterID:   poster.ID,
		PosterRole: poster.Role,
	})
	return ref
}

// seedApplication creates a persisted application in the given status.
func (e *testEnv) seedApplication(t *testing.T, ref opportunity.Ref, status application.Status) *application.Application {
	t.Helper()

	app, err := application.New(e.ids.NewID(), student.ID, student.DisplayName, ref, application.Payload{
		FullName:  student.DisplayName,
		Email:     "aruzhan@example.com",
		ResumeURL: "https://cdn.example.com/resume.pdf",
	})
	require.NoError(t, err)
	require.NoError(t, app.SetStatus(status))
	require.NoError(t, e.appRepo.Create(context.Background(), app))
	return app
}
