package strategy

import (
	"context"

	"StockScreener/internal/model"

	"golang.org/x/sync/errgroup"
)

// Apply evaluates c on every row and returns the results in row order.
func Apply(c Condition, rows []*model.Row) []bool {
	out := make([]bool, len(rows))
	for i, r := range rows {
		out[i] = c.Match(r)
	}
	return out
}

// ApplyParallel is Apply spread over at most workers goroutines. Rows are
// independent so each goroutine writes only its own slots. The only possible
// error is ctx's.
func ApplyParallel(ctx context.Context, c Condition, rows []*model.Row, workers int) ([]bool, error) {
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Apply(c, rows), nil
	}

	out := make([]bool, len(rows))
	chunk := (len(rows) + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = c.Match(rows[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
