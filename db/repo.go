package db

import (
	"context"
	"errors"
	"strings"

	"library-management-api/models"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another user already owns the email.
func (r *Repo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type ListUsersResult struct {
	Users []models.User
	Total int64
}

// 列表（分页 + 关键词，关键词匹配姓名/邮箱）
func (r *Repo) ListUsers(ctx context.Context, search string, page, perPage int) (ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 10
	}

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

func (r *Repo) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, id)
}

func (r *Repo) UpdateUserPassword(ctx context.Context, id, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (r *Repo) SetUserRole(ctx context.Context, id, role string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// 硬删除。借阅记录保留（历史数据），令牌由调用方撤销。
func (r *Repo) DeleteUserByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// RecentTransactionsByUser returns the newest transactions for a user with
// their books preloaded. A deleted book leaves Book nil.
func (r *Repo) RecentTransactionsByUser(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	var ts []models.Transaction
	err := r.DB.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ts).Error
	return ts, err
}

// IsRecordNotFound wraps the gorm sentinel so controllers don't import gorm.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
