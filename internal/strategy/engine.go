package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockScreener/internal/model"
)

// Screen is a named conjunction of conditions: a row matches when every
// condition passes.
type Screen struct {
	Name       string
	Conditions []Condition
}

// Validate checks every condition's parameters.
func (s *Screen) Validate() error {
	if s.Name == "" {
		return errors.New("screen name is required")
	}
	if len(s.Conditions) == 0 {
		return fmt.Errorf("screen %q has no conditions", s.Name)
	}
	for i, c := range s.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("screen %q condition %d (%s): %w", s.Name, i+1, c.Name(), err)
		}
	}
	return nil
}

// Match reports whether a single row passes every condition.
func (s *Screen) Match(r *model.Row) bool {
	for _, c := range s.Conditions {
		if !c.Match(r) {
			return false
		}
	}
	return len(s.Conditions) > 0
}

// Evaluate runs each condition's batch form over rows and combines the
// masks. Matches keep the input row order.
func (s *Screen) Evaluate(ctx context.Context, rows []*model.Row, workers int) (*model.ScreenResult, error) {
	result := &model.ScreenResult{
		Screen:      s.Name,
		Total:       len(rows),
		Conditions:  make([]model.ConditionHit, 0, len(s.Conditions)),
		EvaluatedAt: time.Now(),
	}

	combined := make([]bool, len(rows))
	for i := range combined {
		combined[i] = len(s.Conditions) > 0
	}

	for _, c := range s.Conditions {
		mask, err := ApplyParallel(ctx, c, rows, workers)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", c.Name(), err)
		}
		hit := model.ConditionHit{Name: c.Name()}
		for i, ok := range mask {
			if ok {
				hit.Passed++
			}
			combined[i] = combined[i] && ok
		}
		result.Conditions = append(result.Conditions, hit)
	}

	for i, ok := range combined {
		if !ok || rows[i] == nil {
			continue
		}
		result.Matches = append(result.Matches, model.Match{
			Code:  rows[i].Code,
			Name:  rows[i].Name,
			Close: rows[i].LastClose(),
		})
	}
	return result, nil
}
