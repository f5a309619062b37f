package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltDriver(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.db")
	driver, err := OpenBoltDriver(path, "default")
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("missing bucket reads as absent", func(t *testing.T) {
		_, ok, err := driver.Load(ctx, KeyToken)
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, driver.Delete(ctx, KeyToken))
	})

	t.Run("save load delete", func(t *testing.T) {
		require.NoError(t, driver.Save(ctx, KeyToken, "t1"))
		v, ok, err := driver.Load(ctx, KeyToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "t1", v)

		require.NoError(t, driver.Delete(ctx, KeyToken))
		_, ok, err = driver.Load(ctx, KeyToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("survives reopen", func(t *testing.T) {
		New(NewStore(driver)).Save(sampleAuth())
		require.NoError(t, driver.Close())

		reopened, err := OpenBoltDriver(path, "default")
		require.NoError(t, err)
		t.Cleanup(func() { _ = reopened.Close() })

		s := New(NewStore(reopened))
		require.True(t, s.IsAuthenticated())
		user, ok := s.User()
		require.True(t, ok)
		require.Equal(t, "u1", user.ID)

		other := New(NewStore(NewBoltDriver(reopened.db, "other")))
		require.False(t, other.IsAuthenticated())
	})
}
