package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/persona-authenticity/internal/types"
)

// BatchItem is the outcome of one request in a batch. Exactly one of Result, Err or Skipped
// is set.
type BatchItem struct {
	Index   int                     `json:"index"`
	Request types.GenerationRequest `json:"request"`
	Result  *types.Result           `json:"result,omitempty"`
	Err     error                   `json:"-"`
	Skipped bool                    `json:"skipped,omitempty"`
}

// RunBatch runs every request with at most cfg.Concurrency invocations in flight. Items are
// independent: one failing request does not affect the others. Once ctx is cancelled no new
// invocation starts; requests not yet started are marked Skipped.
func (o *Orchestrator) RunBatch(ctx context.Context, reqs []types.GenerationRequest) []BatchItem {
	items := make([]BatchItem, len(reqs))

	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)

	for i, req := range reqs {
		items[i] = BatchItem{Index: i, Request: req}
		if ctx.Err() != nil {
			items[i].Skipped = true
			continue
		}
		i, req := i, req
		g.Go(func() error {
			if ctx.Err() != nil {
				items[i].Skipped = true
				return nil
			}
			res, err := o.Run(ctx, req)
			items[i].Result = res
			items[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	var accepted, exhausted, failed, skipped int
	for _, it := range items {
		switch {
		case it.Skipped:
			skipped++
		case it.Err != nil:
			failed++
		case it.Result.Accepted():
			accepted++
		default:
			exhausted++
		}
	}
	o.logger.Info("batch finished",
		zap.Int("requests", len(reqs)),
		zap.Int("accepted", accepted),
		zap.Int("exhausted", exhausted),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
	)
	return items
}
