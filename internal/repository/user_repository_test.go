package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := mustCreateUser(t, repo)

	byEmail, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, user.Name, byEmail.Name)
	assert.Equal(t, user.Mobile, byEmail.Mobile)
	assert.Equal(t, "user", byEmail.Role)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(testDB)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := mustCreateUser(t, repo)

	duplicate := *user
	duplicate.ID = uuid.New()
	err := repo.Create(ctx, &duplicate)
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestProperty_StoredPasswordsAreHashed(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords round-trip as bcrypt hashes, never plaintext", prop.ForAll(
		func(password string) bool {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			now := time.Now().UTC().Truncate(time.Microsecond)
			user := &domain.User{
				ID:           uuid.New(),
				Name:         "Property User",
				Email:        uuid.New().String() + "@example.com",
				PasswordHash: string(hashedPassword),
				Role:         "user",
				CreatedAt:    now,
				UpdatedAt:    now,
			}

			if err := repo.Create(ctx, user); err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}
			defer func() {
				_, _ = testDB.Exec("DELETE FROM users WHERE id = $1", user.ID)
			}()

			stored, err := repo.FindByEmail(ctx, user.Email)
			if err != nil {
				t.Logf("Failed to find user: %v", err)
				return false
			}

			if stored.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			return bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) == nil
		},
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
