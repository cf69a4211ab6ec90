package admins

import (
	"context"
	"testing"

	"github.com/delonixservices/b2b-agent-sub001/internal/passwords"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUpsertFromClaims(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()
	claims := map[string]interface{}{
		"sub":                "sub-123",
		"email":              "ops@example.com",
		"name":               "Ops",
		"preferred_username": "Ops",
	}

	a, err := svc.UpsertFromClaims(ctx, claims)
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, "ops", a.Username)
	require.False(t, a.CreatedAt.IsZero())

	claims["name"] = "Ops Team"
	again, err := svc.UpsertFromClaims(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, a.ID, again.ID)
	require.Equal(t, "Ops Team", again.Name)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = svc.UpsertFromClaims(ctx, map[string]interface{}{"email": "y@e.com"})
	require.ErrorIs(t, err, ErrMissingSubject)
}

func TestBootstrapAndAuthenticate(t *testing.T) {
	passwords.Cost = bcrypt.MinCost
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.EnsureBootstrap(ctx, "Root", "s3cret-pass")
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.EnsureBootstrap(ctx, "other", "s3cret-pass")
	require.NoError(t, err)
	require.False(t, created)

	a, err := svc.Authenticate(ctx, "root", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "root", a.Username)

	_, err = svc.Authenticate(ctx, "root", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureBootstrapSkipsWithoutCredentials(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	created, err := svc.EnsureBootstrap(context.Background(), "", "")
	require.NoError(t, err)
	require.False(t, created)
}
