package models

import "time"

const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
)

// LoanPeriod is how long a borrower keeps a book before it is due.
const LoanPeriod = 14 * 24 * time.Hour

type Transaction struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	BookID string `gorm:"type:uuid;index;not null" json:"book_id"`

	BorrowedDate time.Time  `gorm:"index;not null" json:"borrowed_date"`
	DueDate      time.Time  `gorm:"not null" json:"due_date"`
	ReturnedDate *time.Time `json:"returned_date"`
	Status       string     `gorm:"size:20;index;not null;default:'borrowed'" json:"status"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// IsOverdue reports whether the book is still out past its due date.
// Derived on read, never stored.
func (t *Transaction) IsOverdue() bool {
	return t.Status == StatusBorrowed && t.DueDate.Before(time.Now())
}
