package user

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/content"
)

// Repository is the storage contract of the staff account store.
type Repository interface {
	List(ctx context.Context, q content.PageQuery) ([]*AdminUser, int64, error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	Create(ctx context.Context, u *AdminUser) error
	Update(ctx context.Context, u *AdminUser) error
	Delete(ctx context.Context, id string) error
}

// Service manages staff accounts. Like the content services it rejects a
// duplicate submission of an operation that is still in flight.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
		inflight:   make(map[string]struct{}),
	}
}

// List fetches one page of accounts, clamping a page past the end to the
// last page.
func (s *Service) List(ctx context.Context, q content.PageQuery) (*content.PagedResult[*AdminUser], error) {
	q = q.Normalize()

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))

	if len(items) == 0 && total > 0 && q.Page > totalPages {
		q.Page = totalPages
		items, total, err = s.repo.List(ctx, q)
		if err != nil {
			s.logger.Error("failed to list users on clamped page", "error", err)
			return nil, err
		}
	}

	if items == nil {
		items = []*AdminUser{}
	}

	return &content.PagedResult[*AdminUser]{
		Data:       items,
		TotalPages: totalPages,
		TotalCount: total,
		Page:       q.Page,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*AdminUser, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new account with a freshly hashed password. Email
// addresses are unique.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*AdminUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	key := "users:create:" + dto.Email
	if !s.begin(key) {
		s.logger.Warn("duplicate user create rejected", "email", dto.Email)
		return nil, internal.ErrOperationInFlight
	}
	defer s.end(key)

	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err == nil && existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &AdminUser{
		ID:           uuid.NewString(),
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         dto.Role,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update changes name, role and activity of an account, and the password
// when the request carries one.
func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*AdminUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	key := "users:update:" + id
	if !s.begin(key) {
		s.logger.Warn("duplicate user update rejected", "user_id", id)
		return nil, internal.ErrOperationInFlight
	}
	defer s.end(key)

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = dto.Name
	u.Role = dto.Role
	u.IsActive = dto.IsActive

	if dto.Password != nil && *dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id)
	return u, nil
}

// Remove deletes an account.
func (s *Service) Remove(ctx context.Context, id string) error {
	key := "users:remove:" + id
	if !s.begin(key) {
		s.logger.Warn("duplicate user remove rejected", "user_id", id)
		return internal.ErrOperationInFlight
	}
	defer s.end(key)

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
