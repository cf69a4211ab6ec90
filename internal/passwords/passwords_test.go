package passwords

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashCompare(t *testing.T) {
	Cost = bcrypt.MinCost
	h, err := Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", h)

	require.NoError(t, Compare(h, "s3cret-pass"))
	require.ErrorIs(t, Compare(h, "wrong"), ErrMismatch)
	require.ErrorIs(t, Compare("", "anything"), ErrMismatch)
}
