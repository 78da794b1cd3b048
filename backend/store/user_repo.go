package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts u and fails with ErrConflict when the email is taken.
func (r *UserRepo) Create(ctx context.Context, tx *gorm.DB, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	taken, err := r.EmailTaken(ctx, tx, u.Email, 0)
	if err != nil {
		return err
	}
	if taken {
		return apperr.New(apperr.ErrConflict, "users.create", "User already exists")
	}
	return pick(r.db, tx).WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	err := pick(r.db, tx).WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("users.find", "user")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var u models.User
	err := pick(r.db, tx).WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("users.find_by_email", "user")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another user than exceptID owns email.
func (r *UserRepo) EmailTaken(ctx context.Context, tx *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", strings.ToLower(strings.TrimSpace(email)), exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepo) Save(ctx context.Context, tx *gorm.DB, u *models.User) error {
	return pick(r.db, tx).WithContext(ctx).Save(u).Error
}

func (r *UserRepo) RecordLogin(ctx context.Context, tx *gorm.DB, entry *models.LoginHistory) error {
	return pick(r.db, tx).WithContext(ctx).Create(entry).Error
}

func (r *UserRepo) CountLoginsSince(ctx context.Context, tx *gorm.DB, userID uint, since time.Time) (int64, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).Model(&models.LoginHistory{}).
		Where("user_id = ? AND login_time >= ?", userID, since).
		Count(&count).Error
	return count, err
}
