package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/db"
	"github.com/templui/betterme/internal/markdown"
	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/service"
)

type testEnv struct {
	users    repository.UserRepository
	auth     *service.AuthService
	identity *service.IdentityService
	goals    *GoalHandler
	steps    *StepHandler
	seasons  *SeasonHandler
	settings *SettingsHandler
	home     *HomeHandler
	goalSvc  *service.GoalService
	stepSvc  *service.StepService
	userSvc  *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	users := repository.NewUserRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	stepRepo := repository.NewStepRepository(database)

	auth := service.NewAuthService("test-secret", time.Hour, false)
	identity := service.NewIdentityService(users, nil)
	goalSvc := service.NewGoalService(goalRepo, stepRepo, markdown.NewRenderer())
	stepSvc := service.NewStepService(stepRepo, service.NewOwnershipGuard(goalRepo, stepRepo))
	userSvc := service.NewUserService(users, service.NewFileService(nil), nil)

	return &testEnv{
		users:    users,
		auth:     auth,
		identity: identity,
		goals:    NewGoalHandler(goalSvc),
		steps:    NewStepHandler(stepSvc),
		seasons:  NewSeasonHandler(goalSvc),
		settings: NewSettingsHandler(userSvc, auth),
		home:     NewHomeHandler(database),
		goalSvc:  goalSvc,
		stepSvc:  stepSvc,
		userSvc:  userSvc,
	}
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()

	user := e.identity.ResolveUser(&model.ExternalIdentity{
		ID:    model.ExternalID("google", email),
		Email: email,
	})
	require.NotNil(t, user)
	return user
}

// request builds a request for user with optional JSON body and path values
// given as name, value pairs.
func request(t *testing.T, method, target string, user *model.User, body any, pathValues ...string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if user != nil {
		req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
	}
	return req
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func serve[T any](t *testing.T, h http.HandlerFunc, req *http.Request) (int, envelope[T]) {
	t.Helper()

	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env), "body of %s %s", req.Method, req.URL.Path)
	return rec.Code, env
}
