package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/content"
	"github.com/vitalis-clinic/backoffice/internal/user"
)

// Repository stores staff accounts. It also backs the auth service's
// credential and role lookups.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, q content.PageQuery) ([]*user.AdminUser, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.AdminUser{})

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*user.AdminUser
	err := tx.
		Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*user.AdminUser, error) {
	var u user.AdminUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.AdminUser, error) {
	var u user.AdminUser
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *user.AdminUser) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) Update(ctx context.Context, u *user.AdminUser) error {
	return r.db.WithContext(ctx).
		Model(u).
		Select("name", "role", "password_hash", "is_active", "updated_at").
		Updates(u).Error
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&user.AdminUser{}, "id = ?", id).Error
}

// GetCredentialsByEmail returns the password hash and ID of an active
// account, for the auth service.
func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (string, string, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if !u.IsActive {
		return "", "", internal.ErrUserNotFound
	}
	return u.PasswordHash, u.ID, nil
}

// GetRoleByID returns the role of an active account, for the auth service.
func (r *Repository) GetRoleByID(ctx context.Context, userID string) (string, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !u.IsActive {
		return "", internal.ErrUserNotFound
	}
	return u.Role, nil
}
