package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetPresignedURL(ctx, "vouchers/a.html", time.Hour)
	require.Error(t, err)

	require.NoError(t, s.UploadFile(ctx, "vouchers/a.html", bytes.NewBufferString("<p>hi</p>"), 9, "text/html"))
	u, err := s.GetPresignedURL(ctx, "vouchers/a.html", time.Hour)
	require.NoError(t, err)
	require.Contains(t, u, "vouchers/a.html")

	obj, ok := s.Get("vouchers/a.html")
	require.True(t, ok)
	require.Equal(t, "text/html", obj.ContentType)
	require.Equal(t, "<p>hi</p>", string(obj.Data))
}

func TestNewMinIOStorageRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(config.MinIOConfig{})
	require.ErrorIs(t, err, ErrNotConfigured)
}
