package user_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/content"
	"github.com/vitalis-clinic/backoffice/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserStore struct {
	users map[string]*user.AdminUser
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*user.AdminUser)}
}

func (m *mockUserStore) List(_ context.Context, q content.PageQuery) ([]*user.AdminUser, int64, error) {
	var all []*user.AdminUser
	for _, u := range m.users {
		if q.Search == "" || strings.Contains(strings.ToLower(u.Email), strings.ToLower(q.Search)) {
			all = append(all, u)
		}
	}
	total := int64(len(all))
	start := q.Offset()
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (*user.AdminUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*user.AdminUser, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserStore) Create(_ context.Context, u *user.AdminUser) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Update(_ context.Context, u *user.AdminUser) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		store   *mockUserStore
		service *user.Service
		ctx     context.Context
	)

	validCreate := func() user.CreateUserDTO {
		return user.CreateUserDTO{
			Email:    "doctor@vitalis.clinic",
			Name:     "Новый врач",
			Role:     string(auth.RoleChiefDoctor),
			Password: "strong-password",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = newMockUserStore()
		service = user.NewService(store, bcrypt.MinCost, slog.Default())
	})

	Describe("Create", func() {
		It("stores an active account with a hashed password", func() {
			u, err := service.Create(ctx, validCreate())
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeEmpty())
			Expect(u.IsActive).To(BeTrue())
			Expect(u.PasswordHash).NotTo(Equal("strong-password"))

			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("strong-password"))).To(Succeed())
		})

		It("rejects a duplicate email", func() {
			_, err := service.Create(ctx, validCreate())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, validCreate())
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("rejects an unknown role", func() {
			dto := validCreate()
			dto.Role = "JANITOR"

			_, err := service.Create(ctx, dto)

			appErr, ok := err.(*internal.AppError)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("rejects a short password", func() {
			dto := validCreate()
			dto.Password = "short"

			_, err := service.Create(ctx, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("changes role and activity without touching the password", func() {
			u, err := service.Create(ctx, validCreate())
			Expect(err).NotTo(HaveOccurred())
			originalHash := u.PasswordHash

			updated, err := service.Update(ctx, u.ID, user.UpdateUserDTO{
				Name:     "Переведён",
				Role:     string(auth.RoleOperator),
				IsActive: false,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(string(auth.RoleOperator)))
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.PasswordHash).To(Equal(originalHash))
		})

		It("rehashes when a new password is supplied", func() {
			u, err := service.Create(ctx, validCreate())
			Expect(err).NotTo(HaveOccurred())
			originalHash := u.PasswordHash

			newPassword := "another-password"
			updated, err := service.Update(ctx, u.ID, user.UpdateUserDTO{
				Name:     u.Name,
				Role:     u.Role,
				IsActive: true,
				Password: &newPassword,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PasswordHash).NotTo(Equal(originalHash))
		})

		It("fails for a missing account", func() {
			_, err := service.Update(ctx, "missing", user.UpdateUserDTO{
				Name: "X", Role: string(auth.RoleAdmin), IsActive: true,
			})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Remove", func() {
		It("deletes an existing account", func() {
			u, err := service.Create(ctx, validCreate())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Remove(ctx, u.ID)).To(Succeed())

			_, err = service.GetByID(ctx, u.ID)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("fails for a missing account", func() {
			Expect(service.Remove(ctx, "missing")).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("List", func() {
		It("filters by search and reports totals", func() {
			for _, email := range []string{"a@vitalis.clinic", "b@vitalis.clinic", "other@example.com"} {
				dto := validCreate()
				dto.Email = email
				_, err := service.Create(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := service.List(ctx, content.PageQuery{Page: 1, Search: "vitalis"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TotalCount).To(Equal(int64(2)))
			Expect(result.TotalPages).To(Equal(1))
		})

		It("pages accounts through the shared paged shape", func() {
			for i := 0; i < 15; i++ {
				dto := validCreate()
				dto.Email = strings.Repeat("x", i+1) + "@vitalis.clinic"
				_, err := service.Create(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}

			var page *content.PagedResult[*user.AdminUser]
			page, err := service.List(ctx, content.PageQuery{Page: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalCount).To(Equal(int64(15)))
			Expect(page.TotalPages).To(Equal(2))
			Expect(page.Data).To(HaveLen(3))
			for _, account := range page.Data {
				Expect(account.ID).NotTo(BeEmpty())
			}
		})
	})
})
