package models

import "time"

type Book struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Author      string `gorm:"size:255;not null" json:"author"`
	ISBN        string `gorm:"column:isbn;uniqueIndex;size:20;not null" json:"isbn"`
	Genre       string `gorm:"size:100" json:"genre"`
	Description string `gorm:"type:text" json:"description"`

	// Invariant: 0 <= AvailableCopies <= TotalCopies.
	TotalCopies     int `gorm:"not null;default:0" json:"total_copies"`
	AvailableCopies int `gorm:"not null;default:0" json:"available_copies"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string { return "books" }
