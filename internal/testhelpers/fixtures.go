package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "testpassword123"

// CreateUser inserts a user with the given role ("" for a regular user).
func CreateUser(t testing.TB, db *gorm.DB, role string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	id := uuid.New()
	user := &model.User{
		ID:           id,
		Username:     "user_" + id.String()[:8],
		Email:        fmt.Sprintf("testuser+%s@example.com", id),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateCuisine inserts a cuisine.
func CreateCuisine(t testing.TB, db *gorm.DB, name string) *model.Cuisine {
	t.Helper()
	cuisine := &model.Cuisine{Name: name}
	if err := db.Create(cuisine).Error; err != nil {
		t.Fatalf("failed to create cuisine %s: %v", name, err)
	}
	return cuisine
}

// NewRecipe builds a valid, unsaved recipe.
func NewRecipe(id int64, ownerID uuid.UUID, cuisineID int, name string) *model.Recipe {
	return &model.Recipe{
		ID:          id,
		OwnerID:     ownerID,
		CuisineID:   cuisineID,
		Name:        name,
		Ingredients: datatypes.JSONSlice[string]{"salt", "water"},
		Instructions: model.MarkdownData{
			Markdown: "Mix.",
			HTML:     "<p>Mix.</p>\n",
		},
		Created: time.Now().UTC(),
	}
}

// InsertRecipe saves r as is.
func InsertRecipe(t testing.TB, db *gorm.DB, r *model.Recipe) *model.Recipe {
	t.Helper()
	if err := db.Omit("Cuisine").Create(r).Error; err != nil {
		t.Fatalf("failed to insert recipe %d: %v", r.ID, err)
	}
	return r
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
