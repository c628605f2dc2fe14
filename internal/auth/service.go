package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/session"
)

// UserRepository is the slice of the user store the auth service needs.
type UserRepository interface {
	GetCredentialsByEmail(ctx context.Context, email string) (passwordHash string, userID string, err error)
	GetRoleByID(ctx context.Context, userID string) (string, error)
}

// Service implements the password gate and role resolution.
type Service struct {
	users      UserRepository
	tokens     TokenGenerator
	sessions   *session.Manager
	gateHash   string
	bcryptCost int
	logger     *slog.Logger
}

func NewService(users UserRepository, tokens TokenGenerator, sessions *session.Manager, gateHash string, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		sessions:   sessions,
		gateHash:   gateHash,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

// VerifyGate checks the shared back-office password and, on success, marks
// the session verified. One bcrypt comparison per submission, no retries.
func (s *Service) VerifyGate(ctx context.Context, sessionID string, dto VerifyDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.gateHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("gate password rejected")
		return internal.ErrInvalidPassword
	}

	if err := s.sessions.Verify(ctx, sessionID); err != nil {
		s.logger.Error("failed to persist verified session", "error", err)
		return internal.NewInternalError("failed to persist session", err)
	}

	s.logger.Info("gate password accepted", "session_id", sessionID)
	return nil
}

// Authenticate validates user credentials and returns a token pair.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, err := s.users.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidPassword
	}

	accessToken, err := s.tokens.GenerateAccessToken(userID, dto.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID, dto.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens validates a refresh token and returns a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	newRefreshToken, err := s.tokens.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// ResolveRole determines the caller's role from an access token. Every
// failure path degrades to "no role"; the role check endpoint never errors.
func (s *Service) ResolveRole(ctx context.Context, tokenString string) (Role, bool) {
	if tokenString == "" {
		return "", false
	}

	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		s.logger.Warn("role resolution: token rejected", "error", err)
		return "", false
	}

	stored, err := s.users.GetRoleByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("role resolution: user lookup failed", "error", err, "user_id", claims.UserID)
		return "", false
	}

	role, ok := ParseRole(stored)
	if !ok {
		s.logger.Warn("role resolution: unrecognized role", "role", stored, "user_id", claims.UserID)
		return "", false
	}
	return role, true
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
