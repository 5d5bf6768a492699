package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemKV_RoundtripAndOverwrite(t *testing.T) {
	mgr := testManager(t)
	ctx := testContext()

	require.NoError(t, mgr.SystemStorage().SetSystemKV(ctx, "last_ranking_run", "2024-05-01"))
	require.NoError(t, mgr.SystemStorage().SetSystemKV(ctx, "last_ranking_run", "2024-06-01"))

	value, err := mgr.SystemStorage().GetSystemKV(ctx, "last_ranking_run")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", value)
}

func TestSystemKV_UnknownKeyReturnsEmpty(t *testing.T) {
	mgr := testManager(t)
	ctx := testContext()

	value, err := mgr.SystemStorage().GetSystemKV(ctx, "never_set")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}
