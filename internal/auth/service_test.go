package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	pkgauth "github.com/PurushorthamanMR/ArulTex-BA/pkg/auth"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/config"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/security"
)

var testJWTCfg = config.JWTConfig{
	Secret:            "test-secret-test-secret-test-secret",
	Issuer:            "arultex-test",
	ExpirationMinutes: 60,
}

var testArgonCfg = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type authTestEnv struct {
	conn *gorm.DB
	svc  Service
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))

	logg := logger.New(logger.Options{ServiceName: "auth-test"})
	svc, err := NewService(users.NewRepository(conn), testJWTCfg, logg)
	require.NoError(t, err)
	return &authTestEnv{conn: conn, svc: svc}
}

func (e *authTestEnv) mustCreateUser(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testArgonCfg)
	require.NoError(t, err)
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Arul",
		LastName:     "Tex",
		Role:         enums.UserRoleManager,
		IsActive:     active,
	}
	require.NoError(t, e.conn.Create(user).Error)
	return user
}

func TestLoginMintsParsableToken(t *testing.T) {
	t.Parallel()
	env := newAuthTestEnv(t)
	user := env.mustCreateUser(t, "manager@arultex.lk", "open-sesame", true)

	result, err := env.svc.Login(context.Background(), LoginInput{
		Email:    "  Manager@ArulTex.LK ",
		Password: "open-sesame",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.UserID)
	assert.Equal(t, enums.UserRoleManager, result.Role)

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, enums.UserRoleManager, claims.Role)

	var stored models.User
	require.NoError(t, env.conn.First(&stored, "id = ?", user.ID).Error)
	require.NotNil(t, stored.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *stored.LastLoginAt, time.Minute)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	env := newAuthTestEnv(t)
	env.mustCreateUser(t, "cashier@arultex.lk", "right-password", true)

	cases := []struct {
		name  string
		input LoginInput
	}{
		{name: "wrong password", input: LoginInput{Email: "cashier@arultex.lk", Password: "wrong-password"}},
		{name: "unknown email", input: LoginInput{Email: "nobody@arultex.lk", Password: "right-password"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Login(context.Background(), tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		})
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	t.Parallel()
	env := newAuthTestEnv(t)
	env.mustCreateUser(t, "former@arultex.lk", "still-remembers", false)

	_, err := env.svc.Login(context.Background(), LoginInput{
		Email:    "former@arultex.lk",
		Password: "still-remembers",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRequiresBothFields(t *testing.T) {
	t.Parallel()
	env := newAuthTestEnv(t)

	_, err := env.svc.Login(context.Background(), LoginInput{Email: "", Password: ""})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
