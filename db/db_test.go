package db

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"library-management-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestRepo opens a fresh in-memory database per test. cache=shared keeps
// the database alive across the connections gorm pools.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

func seedUser(t *testing.T, r *Repo, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:       uuid.NewString(),
		Name:     "Test User",
		Email:    email,
		Password: "not-a-real-hash",
		Role:     models.RoleUser,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedBook(t *testing.T, r *Repo, isbn string, copies int) *models.Book {
	t.Helper()
	b := &models.Book{
		ID:              uuid.NewString(),
		Title:           "The Go Programming Language",
		Author:          "Alan A. A. Donovan",
		ISBN:            isbn,
		Genre:           "Programming",
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
	require.NoError(t, r.CreateBook(context.Background(), b))
	return b
}
