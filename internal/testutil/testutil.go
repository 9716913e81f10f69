package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedBallot creates the categories described by ballot, keyed by category id
// with nominee ids in display order. Category order follows the order slice.
func SeedBallot(t *testing.T, repo repository.CategoryRepository, order []string, ballot map[string][]string) {
	t.Helper()
	ctx := context.Background()

	for i, catID := range order {
		if err := repo.CreateCategory(ctx, models.Category{ID: catID, Name: catID, DisplayOrder: i + 1, Active: true}); err != nil {
			t.Fatalf("failed to create category %s: %v", catID, err)
		}
		for j, nomID := range ballot[catID] {
			if err := repo.CreateNominee(ctx, models.Nominee{CategoryID: catID, ID: nomID, Name: nomID, DisplayOrder: j + 1}); err != nil {
				t.Fatalf("failed to create nominee %s/%s: %v", catID, nomID, err)
			}
		}
	}
}

// SeedUser creates a user with the given id and display name
func SeedUser(t *testing.T, repo repository.UserRepository, id, name string) {
	t.Helper()
	if err := repo.CreateUser(context.Background(), models.User{ID: id, DisplayName: name}); err != nil {
		t.Fatalf("failed to create user %s: %v", id, err)
	}
}
