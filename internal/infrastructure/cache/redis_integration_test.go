//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/pkg/testutil"
)

func TestNewRedisConnection(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)
	defer rc.Cleanup(t)

	client, err := NewRedisConnection(ctx, ConnectionInfo{Addr: rc.Addr})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(ctx, "k", "v", 0).Err())
}
