package optim

import (
	"context"
	"errors"
	"math"
)

// ErrNoCandidate is returned when every evaluated point failed.
var ErrNoCandidate = errors.New("optim: no candidate evaluated successfully")

// Objective scores one parameter point; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates every point of the cartesian product of the ranges and
// returns the lowest scoring one along with all trials in visiting order.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, errors.New("optim: parameter names and ranges differ in length")
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams, &trials); err != nil {
		return nil, 0, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, ErrNoCandidate
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := objective(ctx, current)
		*trials = append(*trials, Trial{Params: current, Score: score, Err: err})
		if err != nil || math.IsNaN(score) {
			return nil
		}

		if score < *best || *bestParams == nil {
			*best = score
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, best, bestParams, trials); err != nil {
			return err
		}
	}
	return nil
}
