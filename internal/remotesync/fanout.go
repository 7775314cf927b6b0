package remotesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

// Target is one named sync destination.
type Target struct {
	Name string
	Save drawing.SaveFunc
	// Timeout bounds one Save call. Zero means no deadline beyond ctx.
	Timeout time.Duration
}

// Fanout delivers each record to every target concurrently.
type Fanout struct {
	targets []Target
}

func NewFanout(targets ...Target) *Fanout {
	f := &Fanout{}
	for _, t := range targets {
		if t.Save != nil {
			f.targets = append(f.targets, t)
		}
	}
	return f
}

// Len reports how many targets are configured.
func (f *Fanout) Len() int { return len(f.targets) }

// Save implements drawing.SaveFunc. It waits for every target and joins
// their errors.
func (f *Fanout) Save(ctx context.Context, subject string, rec drawing.Record) error {
	if len(f.targets) == 0 {
		return nil
	}
	errs := make([]error, len(f.targets))
	var wg sync.WaitGroup
	for i, t := range f.targets {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			tctx := ctx
			if t.Timeout > 0 {
				var cancel context.CancelFunc
				tctx, cancel = context.WithTimeout(ctx, t.Timeout)
				defer cancel()
			}
			if err := t.Save(tctx, subject, rec); err != nil {
				slog.Debug("drawing sync target failed", "target", t.Name, "subject", subject, "error", err)
				errs[i] = fmt.Errorf("%s: %w", t.Name, err)
			}
		}(i, t)
	}
	wg.Wait()
	return errors.Join(errs...)
}
