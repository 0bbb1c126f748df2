// app/seed.go
package app

import (
	"context"
	"log"

	"library-management-api/db"
	"library-management-api/models"

	"github.com/google/uuid"
)

// Seed creates the bootstrap admin and the starter catalog. Idempotent:
// skips whatever already exists.
func Seed(ctx context.Context, repo *db.Repo) {
	seedAdmin(ctx, repo)
	seedBooks(ctx, repo)
}

func seedAdmin(ctx context.Context, repo *db.Repo) {
	const adminEmail = "admin@library.com"

	if _, err := repo.FindUserByEmail(ctx, adminEmail); err == nil {
		return
	}

	admin := &models.User{
		ID:    uuid.NewString(),
		Name:  "Library Admin",
		Email: adminEmail,
		Role:  models.RoleAdmin,
	}
	if err := admin.SetPassword("password123"); err != nil {
		log.Printf("seed admin: %v", err)
		return
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		log.Printf("seed admin: %v", err)
		return
	}
	log.Printf("[SEED] created admin user %s", adminEmail)
}

func seedBooks(ctx context.Context, repo *db.Repo) {
	existing, err := repo.ListBooks(ctx, db.BookQuery{Page: 1, PerPage: 1})
	if err != nil || existing.Total > 0 {
		return
	}

	books := []models.Book{
		{
			Title:           "The Psychology of Money",
			Author:          "Morgan Housel",
			ISBN:            "9780857197689",
			Genre:           "Finance",
			Description:     "Timeless lessons on wealth, greed, and happiness.",
			TotalCopies:     5,
			AvailableCopies: 5,
		},
		{
			Title:           "Deep Work",
			Author:          "Cal Newport",
			ISBN:            "9781455586691",
			Genre:           "Productivity",
			Description:     "Rules for focused success in a distracted world.",
			TotalCopies:     4,
			AvailableCopies: 4,
		},
		{
			Title:           "Sapiens: A Brief History of Humankind",
			Author:          "Yuval Noah Harari",
			ISBN:            "9780062316097",
			Genre:           "History",
			Description:     "Exploring the history of human evolution and civilization.",
			TotalCopies:     6,
			AvailableCopies: 6,
		},
		{
			Title:           "The Alchemist",
			Author:          "Paulo Coelho",
			ISBN:            "9780062315007",
			Genre:           "Fiction",
			Description:     "A shepherd boy's journey to discover his personal legend.",
			TotalCopies:     7,
			AvailableCopies: 7,
		},
		{
			Title:           "Atomic Habits",
			Author:          "James Clear",
			ISBN:            "9780735211292",
			Genre:           "Self-Help",
			Description:     "Tiny changes, remarkable results - building good habits.",
			TotalCopies:     5,
			AvailableCopies: 5,
		},
	}

	for i := range books {
		books[i].ID = uuid.NewString()
		if err := repo.CreateBook(ctx, &books[i]); err != nil {
			log.Printf("seed book %q: %v", books[i].Title, err)
		}
	}
	log.Printf("[SEED] created %d starter books", len(books))
}
