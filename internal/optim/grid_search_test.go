package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{-1, 0, 1, 2}, {0, 3, 5}})

	best, score, trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		dx, dy := p["x"]-1, p["y"]-3
		return dx*dx + dy*dy, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 1, "y": 3}, best)
	assert.Equal(t, 0.0, score)
	assert.Len(t, trials, 12)
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"workers"}, [][]float64{{1, 2, 4}})

	best, score, trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["workers"] == 1 {
			return 0, errors.New("boom")
		}
		return 10 / p["workers"], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, best["workers"])
	assert.Equal(t, 2.5, score)
	require.Len(t, trials, 3)
	assert.Error(t, trials[0].Err)
}

func TestGridSearchAllFail(t *testing.T) {
	g := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	_, _, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("nope")
	})
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"a"}, [][]float64{{1}})
	_, _, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGridSearchMismatchedRanges(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1}})
	_, _, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 1, nil
	})
	assert.Error(t, err)
}
