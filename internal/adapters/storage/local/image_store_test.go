package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

func TestImageStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	store, err := NewImageStore(dir)
	require.NoError(t, err)

	t.Run("stores allowed image", func(t *testing.T) {
		path, err := store.Save(context.Background(), "Portrait.PNG", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, PublicPrefix))
		assert.True(t, strings.HasSuffix(path, ".png"))

		content, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, PublicPrefix)))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))
	})

	t.Run("two uploads never collide", func(t *testing.T) {
		first, err := store.Save(context.Background(), "a.jpg", strings.NewReader("1"))
		require.NoError(t, err)
		second, err := store.Save(context.Background(), "a.jpg", strings.NewReader("2"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		_, err := store.Save(context.Background(), "script.sh", strings.NewReader("#!/bin/sh"))
		require.ErrorIs(t, err, domain.ErrUnsupportedImage)
	})
}
