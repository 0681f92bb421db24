package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	pkgauth "github.com/PurushorthamanMR/ArulTex-BA/pkg/auth"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/config"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/security"
	"gorm.io/gorm"
)

// Service authenticates operators and issues access tokens.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

// LoginInput carries the credential pair.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	AccessToken string         `json:"accessToken"`
	UserID      int64          `json:"userId"`
	Email       string         `json:"email"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Role        enums.UserRole `json:"role"`
}

type service struct {
	userRepo *users.Repository
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(userRepo *users.Repository, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{userRepo: userRepo, jwtCfg: jwtCfg, logg: logg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, invalidCredentials()
	}

	ok, err := s.verify(user, input.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidCredentials()
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("minting token: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, fmt.Sprint(user.ID)), "failed to record last login")
	}

	return &LoginResult{
		AccessToken: token,
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
	}, nil
}

func (s *service) verify(user *models.User, password string) (bool, error) {
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
