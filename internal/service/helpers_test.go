package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/embedding"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

type sequentialIDs struct {
	mu   sync.Mutex
	next int64
}

func (s *sequentialIDs) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next += 1000
	return s.next
}

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) CurrentUserID(p authz.Principal) (uuid.UUID, bool) {
	args := m.Called(p)
	return args.Get(0).(uuid.UUID), args.Bool(1)
}

func (m *mockIdentity) IsAdmin(ctx context.Context, p authz.Principal) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

type recipeEnv struct {
	db       *gorm.DB
	svc      *RecipeService
	auth     *AuthService
	admin    *model.User
	owner    *model.User
	stranger *model.User
	thai     *model.Cuisine
	italian  *model.Cuisine
	dir      string
}

func (e *recipeEnv) principal(u *model.User) authz.Principal {
	return authz.NewPrincipal(u.ID, false)
}

func newRecipeEnv(t *testing.T, embedder embedding.Provider, deployment string) *recipeEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	auth := NewAuthService(db, "test-secret-at-least-16")
	dir := t.TempDir()

	env := &recipeEnv{
		db:       db,
		auth:     auth,
		admin:    testhelpers.CreateUser(t, db, model.RoleAdministrator),
		owner:    testhelpers.CreateUser(t, db, ""),
		stranger: testhelpers.CreateUser(t, db, ""),
		thai:     testhelpers.CreateCuisine(t, db, "Thai"),
		italian:  testhelpers.CreateCuisine(t, db, "Italian"),
		dir:      dir,
	}
	env.svc = NewRecipeService(db, &sequentialIDs{}, auth, embedder, nil, RecipeConfig{
		ImagesDir:           dir,
		EmbeddingDeployment: deployment,
	})
	return env
}

func intPtr(v int) *int { return &v }

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
