package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedProfile) func() error {
		return func() error {
			fetches++
			*dest = cachedProfile{Username: "devone", Bio: "builds things"}
			return nil
		}
	}

	var first cachedProfile
	require.NoError(t, Aside(ctx, ProfileKey("devone"), &first, ProfileTTL, fetch(&first)))
	assert.Equal(t, "devone", first.Username)
	assert.Equal(t, 1, fetches)

	// Second read is served from the cache.
	var second cachedProfile
	require.NoError(t, Aside(ctx, ProfileKey("devone"), &second, ProfileTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	var dest cachedProfile
	err := Aside(ctx, ProfileKey("ghost"), &dest, ProfileTTL, func() error {
		return assert.AnError
	})
	assert.Error(t, err)

	found, err := GetJSON(ctx, ProfileKey("ghost"), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_NilClientDegradesToFetch(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetches := 0
	for i := 0; i < 2; i++ {
		var dest cachedProfile
		require.NoError(t, Aside(ctx, ProfileKey("devone"), &dest, ProfileTTL, func() error {
			fetches++
			dest.Username = "devone"
			return nil
		}))
	}
	assert.Equal(t, 2, fetches, "every read hits the source without Redis")
}

func TestInvalidateProfile(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ProfileKey("devone"), cachedProfile{Username: "devone"}, ProfileTTL))

	InvalidateProfile(ctx, "devone")

	var dest cachedProfile
	found, err := GetJSON(ctx, ProfileKey("devone"), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_ExpiredEntryRefetches(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedProfile) func() error {
		return func() error {
			fetches++
			dest.Username = "devone"
			return nil
		}
	}

	var dest cachedProfile
	require.NoError(t, Aside(ctx, ProfileKey("devone"), &dest, ProfileTTL, fetch(&dest)))
	mr.FastForward(ProfileTTL * 2)

	var again cachedProfile
	require.NoError(t, Aside(ctx, ProfileKey("devone"), &again, ProfileTTL, fetch(&again)))
	assert.Equal(t, 2, fetches)
}
