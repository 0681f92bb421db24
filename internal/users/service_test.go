package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PurushorthamanMR/ArulTex-BA/pkg/config"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/security"
)

// Low-cost argon parameters keep the hashing tests fast.
var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func newUserTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))

	svc, err := NewService(NewRepository(conn), testPasswordCfg)
	require.NoError(t, err)
	return svc, conn
}

func TestCreateUserHashesPasswordAndLowercasesEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newUserTestService(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:     "  Priya@ArulTex.LK ",
		Password:  "correct-horse",
		FirstName: "Priya",
		LastName:  "Raman",
		Role:      enums.UserRoleCashier,
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@arultex.lk", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	ok, err := security.VerifyPassword("correct-horse", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newUserTestService(t)

	input := CreateUserInput{
		Email:     "kumar@arultex.lk",
		Password:  "password123",
		FirstName: "Kumar",
		LastName:  "Selvam",
		Role:      enums.UserRoleManager,
	}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newUserTestService(t)

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{
			name:  "missing email",
			input: CreateUserInput{Password: "password123", FirstName: "A", LastName: "B", Role: enums.UserRoleCashier},
		},
		{
			name:  "short password",
			input: CreateUserInput{Email: "a@b.lk", Password: "short", FirstName: "A", LastName: "B", Role: enums.UserRoleCashier},
		},
		{
			name:  "invalid role",
			input: CreateUserInput{Email: "a@b.lk", Password: "password123", FirstName: "A", LastName: "B", Role: enums.UserRole("owner")},
		},
		{
			name:  "missing names",
			input: CreateUserInput{Email: "a@b.lk", Password: "password123", Role: enums.UserRoleCashier},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestSetActiveTogglesAccount(t *testing.T) {
	t.Parallel()
	svc, _ := newUserTestService(t)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:     "meena@arultex.lk",
		Password:  "password123",
		FirstName: "Meena",
		LastName:  "Devi",
		Role:      enums.UserRoleCashier,
	})
	require.NoError(t, err)

	disabled, err := svc.SetActive(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	enabled, err := svc.SetActive(context.Background(), user.ID, true)
	require.NoError(t, err)
	assert.True(t, enabled.IsActive)

	_, err = svc.SetActive(context.Background(), 9999, false)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
