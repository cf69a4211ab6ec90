package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/stretchr/testify/require"
)

var testPrincipal = models.Principal{Subject: "emp-1", Role: models.RoleEmployee, CompanyID: "c-1", Name: "Asha"}

func TestCreateAndValidateSession(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	r, err := svc.CreateSession(ctx, testPrincipal, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, r)

	sess, err := svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, testPrincipal, sess.Principal())

	require.NoError(t, svc.DeleteRefresh(ctx, r))
	sess2, err := svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.Nil(t, sess2)
}

func TestValidateRefresh_Expired(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()
	r, err := svc.CreateSession(ctx, testPrincipal, -time.Second)
	require.NoError(t, err)

	sess, err := svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.Nil(t, sess)

	gone, _ := repo.GetByRefresh(ctx, r)
	require.Nil(t, gone)
}

func TestRotate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	r, err := svc.CreateSession(ctx, testPrincipal, time.Hour)
	require.NoError(t, err)

	next, sess, err := svc.Rotate(ctx, r, time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, r, next)
	require.Equal(t, "c-1", sess.CompanyID)

	old, err := svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.Nil(t, old)

	again, sess2, err := svc.Rotate(ctx, r, time.Hour)
	require.NoError(t, err)
	require.Empty(t, again)
	require.Nil(t, sess2)
}
