package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	_, err := testDB.Exec(`
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token VARCHAR(255) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	require.NoError(t, err)

	userRepo := NewUserRepository(testDB)
	tokenRepo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	user := mustCreateUser(t, userRepo)

	token := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Microsecond),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, tokenRepo.Create(ctx, token))
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM refresh_tokens WHERE id = $1", token.ID)
	})

	found, err := tokenRepo.FindByToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
	assert.False(t, found.Revoked)

	require.NoError(t, tokenRepo.Revoke(ctx, token.Token))

	_, err = tokenRepo.FindByToken(ctx, token.Token)
	require.ErrorIs(t, err, ErrRefreshTokenRevoked)

	_, err = tokenRepo.FindByToken(ctx, "never-issued")
	require.ErrorIs(t, err, ErrRefreshTokenNotFound)
}
