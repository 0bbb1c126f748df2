package db

import (
	"fmt"
	"log"
	"os"

	"library-management-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Transaction{},
		&models.PasswordReset{},
	); err != nil {
		return err
	}

	// 同一 (user, book) 最多一条未归还借阅
	if err := db.Exec(`
	  CREATE UNIQUE INDEX IF NOT EXISTS transactions_one_open_per_user_book
	  ON transactions (user_id, book_id)
	  WHERE status = 'borrowed';
	`).Error; err != nil {
		return err
	}

	// 查询当前借阅更快
	if err := db.Exec(`
	  CREATE INDEX IF NOT EXISTS transactions_open_due_date
	  ON transactions (due_date)
	  WHERE status = 'borrowed';
	`).Error; err != nil {
		return err
	}

	return nil
}
