package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice(context.Background(), []int{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCollect_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(context.Background(), Fail[int](boom))
	assert.Same(t, boom, err)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := Collect(ctx, FromSlice(ctx, []int{1, 2, 3}))
	assert.Empty(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromSlice_StopsOnBreak(t *testing.T) {
	n := 0
	for range FromSlice(context.Background(), []string{"a", "b", "c"}) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
