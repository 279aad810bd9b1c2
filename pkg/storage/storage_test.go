package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	file, err := OpenFile(context.Background(), filepath.Join(t.TempDir(), "state", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": file,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, KeyAccessToken)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyAccessToken, "a1"))
			require.NoError(t, s.Set(ctx, KeyAccessToken, "a2"))
			require.NoError(t, s.Set(ctx, KeyRefreshToken, "r1"))

			v, err := s.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.Equal(t, "a2", v)

			require.NoError(t, s.Delete(ctx, KeyAccessToken, KeyRefreshToken, "missing"))
			_, err = s.Get(ctx, KeyRefreshToken)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestOpenFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := OpenFile(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyCookieConsent, "accepted"))
	require.NoError(t, first.Close())

	second, err := OpenFile(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	v, err := second.Get(ctx, KeyCookieConsent)
	require.NoError(t, err)
	assert.Equal(t, "accepted", v)
}
