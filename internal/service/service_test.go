package service

import (
	"bytes"
	"io"
	"mime/multipart"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/templui/betterme/internal/db"
	"github.com/templui/betterme/internal/markdown"
	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/repository"
)

// winter 2025 under the 0-based month bands
var fixedNow = time.Date(2025, time.February, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	users    repository.UserRepository
	goals    *GoalService
	steps    *StepService
	guard    *OwnershipGuard
	identity *IdentityService
	accounts *UserService
	storage  *memoryStorage
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

	email := NewEmailService("", "noreply@example.com", "http://localhost:8090", "BetterMe", true)
	store := newMemoryStorage()
	guard := NewOwnershipGuard(goalRepo, stepRepo)

	env := &testEnv{
		users:    users,
		goals:    NewGoalService(goalRepo, stepRepo, markdown.NewRenderer()),
		steps:    NewStepService(stepRepo, guard),
		guard:    guard,
		identity: NewIdentityService(users, email),
		accounts: NewUserService(users, NewFileService(store), email),
		storage:  store,
	}

	clock := func() time.Time { return fixedNow }
	env.goals.now = clock
	env.steps.now = clock
	env.identity.now = clock
	env.accounts.now = clock

	return env
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()

	user := e.identity.ResolveUser(&model.ExternalIdentity{
		ID:        model.ExternalID("google", email),
		Email:     email,
		GivenName: "Test",
	})
	require.NotNil(t, user)
	return user
}

func (e *testEnv) goal(t *testing.T, userID, title string) *model.GoalWithSteps {
	t.Helper()

	goal, err := e.goals.CreateGoal(userID, CreateGoalInput{Title: title})
	require.NoError(t, err)
	return goal
}

func ptr[T any](v T) *T {
	return &v
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Save(path, contentType string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return nil
}

func (m *memoryStorage) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memoryStorage) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

func (m *memoryStorage) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("picture", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["picture"][0]
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
