package companies

import (
	"context"
	"testing"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/passwords"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	passwords.Cost = bcrypt.MinCost
	return NewService(NewMemoryRepository())
}

func signupInput() SignupInput {
	return SignupInput{
		Name:          "Acme Travels",
		ContactName:   "Ravi",
		Email:         "Ops@Acme.in",
		Phone:         "+91 98765 43210",
		Password:      "password123",
		CompanyNumber: "CIN-1",
	}
}

func TestSignupCreatesPendingCompany(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, models.CompanyPending, c.Status)
	require.Equal(t, "+919876543210", c.Phone)
	require.Equal(t, "ops@acme.in", c.Email)
	require.NotEqual(t, "password123", c.PasswordHash)

	_, err = svc.Signup(ctx, signupInput())
	require.ErrorIs(t, err, ErrConflict)

	bad := signupInput()
	bad.Phone = "123"
	_, err = svc.Signup(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidPhone)
}

func TestAuthenticateRequiresVerification(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "+919876543210", "password123")
	require.ErrorIs(t, err, ErrNotVerified)

	c, err := svc.VerifyPhone(ctx, "+919876543210")
	require.NoError(t, err)
	require.True(t, c.PhoneVerified)
	require.Equal(t, models.CompanyActive, c.Status)

	got, err := svc.Authenticate(ctx, "ops@acme.in", "password123")
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	_, err = svc.Authenticate(ctx, "+919876543210", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@acme.in", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminUpdateStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	c, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	blocked := models.CompanyBlocked
	got, err := svc.AdminUpdate(ctx, c.ID, models.CompanyUpdate{Status: &blocked})
	require.NoError(t, err)
	require.Equal(t, models.CompanyBlocked, got.Status)

	_, err = svc.Authenticate(ctx, "+919876543210", "password123")
	require.ErrorIs(t, err, ErrBlocked)

	weird := "deleted"
	_, err = svc.AdminUpdate(ctx, c.ID, models.CompanyUpdate{Status: &weird})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateProfileIgnoresAdminFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	c, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	name := "Hijacked"
	status := models.CompanyActive
	addr := "<i>12 MG Road</i>"
	got, err := svc.UpdateProfile(ctx, c.ID, models.CompanyUpdate{Name: &name, Status: &status, Address: &addr})
	require.NoError(t, err)
	require.Equal(t, "Acme Travels", got.Name)
	require.Equal(t, models.CompanyPending, got.Status)
	require.Equal(t, "12 MG Road", got.Address)
}

func TestListFiltersByStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	in := signupInput()
	in.Phone, in.Email, in.CompanyNumber = "9999999999", "b@b.in", ""
	c2, err := svc.Signup(ctx, in)
	require.NoError(t, err)
	_, err = svc.VerifyPhone(ctx, c2.Phone)
	require.NoError(t, err)

	list, total, err := svc.List(ctx, models.CompanyActive, models.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, c2.ID, list[0].ID)
}
