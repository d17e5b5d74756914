package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitdocsync/internal/docstore"
)

func TestCheckoutReleaseJob(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Checkout(ctx, "DOC-1", "alice"))

	j := NewCheckoutReleaseJob(store, time.Hour)
	require.Equal(t, "checkout_release", j.Name())
	require.NoError(t, j.Run(ctx))

	// The lock is younger than the TTL, so it survives.
	err := store.Checkout(ctx, "DOC-1", "bob")
	require.Error(t, err)

	// A negative TTL puts the cutoff in the future, forcing a release.
	j = NewCheckoutReleaseJob(store, -time.Minute)
	require.NoError(t, j.Run(ctx))
	require.NoError(t, store.Checkout(ctx, "DOC-1", "bob"))
}
