package db

import (
	"context"
	"errors"
	"time"

	"library-management-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transactions

var (
	ErrNoCopiesAvailable = errors.New("no available copies of this book")
	ErrAlreadyBorrowed   = errors.New("book already borrowed by this user")
	ErrAlreadyReturned   = errors.New("book already returned")
)

// BorrowBook 借出：原子操作 = 校验库存与重复借阅 → 扣减库存 → 新建 transaction。
// The conditional UPDATE is the race guard: two borrows of the last copy
// cannot both pass `available_copies > 0`, and the partial unique index on
// open transactions backstops the one-open-borrow-per-(user,book) rule.
func (r *Repo) BorrowBook(ctx context.Context, userID, bookID string) (*models.Transaction, error) {
	var created *models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := tx.First(&b, "id = ?", bookID).Error; err != nil {
			return err
		}
		if b.AvailableCopies < 1 {
			return ErrNoCopiesAvailable
		}

		var n int64
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, models.StatusBorrowed).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyBorrowed
		}

		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoCopiesAvailable
		}

		now := time.Now().UTC()
		t := &models.Transaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			BookID:       bookID,
			BorrowedDate: now,
			DueDate:      now.Add(models.LoanPeriod),
			Status:       models.StatusBorrowed,
		}
		if err := tx.Create(t).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBorrowed
			}
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindTransactionByID(ctx, created.ID)
}

// ReturnTransaction 归还：原子操作 = 状态翻转 → 回补库存。
// Ownership is checked by the caller; the state transition itself is the
// same for a member return and an admin mark-returned.
func (r *Repo) ReturnTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		if t.Status == models.StatusReturned {
			return ErrAlreadyReturned
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", id, models.StatusBorrowed).
			Updates(map[string]interface{}{
				"status":        models.StatusReturned,
				"returned_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReturned
		}

		// available_copies < total_copies 保证回补不会越界；
		// the book may have been deleted, which leaves nothing to restock.
		if err := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies < total_copies", t.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindTransactionByID(ctx, id)
}

func (r *Repo) FindTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.DB.WithContext(ctx).
		Preload("Book").
		First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

type TransactionQuery struct {
	UserID  string // empty = all users (admin)
	Status  string
	Overdue bool
	Page    int
	PerPage int
}

type ListTransactionsResult struct {
	Transactions []models.Transaction
	Total        int64
}

func (r *Repo) ListTransactions(ctx context.Context, q TransactionQuery) (ListTransactionsResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 || q.PerPage > 100 {
		q.PerPage = 10
	}

	tx := r.DB.WithContext(ctx).Model(&models.Transaction{})
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Overdue {
		tx = tx.Where("status = ? AND due_date < ?", models.StatusBorrowed, time.Now().UTC())
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListTransactionsResult{}, err
	}

	var ts []models.Transaction
	if err := tx.
		Preload("User").
		Preload("Book").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&ts).Error; err != nil {
		return ListTransactionsResult{}, err
	}
	return ListTransactionsResult{Transactions: ts, Total: total}, nil
}

type UserStats struct {
	TotalBorrowed     int64 `json:"total_borrowed"`
	CurrentlyBorrowed int64 `json:"currently_borrowed"`
	OverdueBooks      int64 `json:"overdue_books"`
}

func (r *Repo) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	var s UserStats
	base := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	}
	if err := base().Count(&s.TotalBorrowed).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusBorrowed).Count(&s.CurrentlyBorrowed).Error; err != nil {
		return nil, err
	}
	if err := base().
		Where("status = ? AND due_date < ?", models.StatusBorrowed, time.Now().UTC()).
		Count(&s.OverdueBooks).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type DashboardStats struct {
	TotalBooks        int64 `json:"total_books"`
	TotalUsers        int64 `json:"total_users"`
	TotalTransactions int64 `json:"total_transactions"`
	BooksBorrowed     int64 `json:"books_borrowed"`
	OverdueBooks      int64 `json:"overdue_books"`
	AvailableBooks    int64 `json:"available_books"`
}

func (r *Repo) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Book{}).Count(&s.TotalBooks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).Count(&s.TotalTransactions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("status = ?", models.StatusBorrowed).
		Count(&s.BooksBorrowed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("status = ? AND due_date < ?", models.StatusBorrowed, time.Now().UTC()).
		Count(&s.OverdueBooks).Error; err != nil {
		return nil, err
	}
	var available *int64
	if err := db.Model(&models.Book{}).
		Select("COALESCE(SUM(available_copies), 0)").
		Scan(&available).Error; err != nil {
		return nil, err
	}
	if available != nil {
		s.AvailableBooks = *available
	}
	return &s, nil
}
