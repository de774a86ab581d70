package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

func TestKey(t *testing.T) {
	date := time.Date(2025, time.March, 7, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "turnos:available:2025-03-07", Key(date))
}

func TestGenerationKey(t *testing.T) {
	date := time.Date(2025, time.March, 7, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "turnos:available:gen:2025-03-07", GenerationKey(date))
	assert.NotEqual(t, Key(date), GenerationKey(date))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

	var c Noop
	gen, err := c.Generation(ctx, date)
	require.NoError(t, err)
	assert.Zero(t, gen)

	stored, err := c.SetIfUnchanged(ctx, date, gen, []types.TimeString{"09:00"})
	require.NoError(t, err)
	assert.False(t, stored)

	slots, found, err := c.Get(ctx, date)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, slots)

	assert.NoError(t, c.Invalidate(ctx, date))
}
