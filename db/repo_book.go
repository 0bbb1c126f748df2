package db

import (
	"context"
	"strings"

	"library-management-api/models"

	"gorm.io/gorm"
)

// Books

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

type BookQuery struct {
	Search  string // 模糊搜索：title/author
	Genre   string
	Page    int
	PerPage int
}

type ListBooksResult struct {
	Books []models.Book
	Total int64
}

func (r *Repo) ListBooks(ctx context.Context, q BookQuery) (ListBooksResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 || q.PerPage > 100 {
		q.PerPage = 10
	}

	tx := r.DB.WithContext(ctx).Model(&models.Book{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", like, like)
	}
	if q.Genre != "" {
		tx = tx.Where("genre = ?", q.Genre)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListBooksResult{}, err
	}

	var books []models.Book
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&books).Error; err != nil {
		return ListBooksResult{}, err
	}
	return ListBooksResult{Books: books, Total: total}, nil
}

type BookUpdate struct {
	Title       *string
	Author      *string
	ISBN        *string
	Genre       *string
	Description *string
	TotalCopies *int
}

// UpdateBook applies a partial update. A total_copies change shifts
// available_copies by the same delta, clamped at zero, so open borrows
// survive and 0 <= available <= total keeps holding.
func (r *Repo) UpdateBook(ctx context.Context, id string, in BookUpdate) (*models.Book, error) {
	var out *models.Book
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Author != nil {
			updates["author"] = *in.Author
		}
		if in.ISBN != nil {
			updates["isbn"] = *in.ISBN
		}
		if in.Genre != nil {
			updates["genre"] = *in.Genre
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.TotalCopies != nil {
			delta := *in.TotalCopies - b.TotalCopies
			available := b.AvailableCopies + delta
			if available < 0 {
				available = 0
			}
			updates["total_copies"] = *in.TotalCopies
			updates["available_copies"] = available
		}

		if len(updates) == 0 {
			out = &b
			return nil
		}
		if err := tx.Model(&b).Updates(updates).Error; err != nil {
			return err
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *Repo) DeleteBookByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error
}
