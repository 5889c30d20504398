package verify

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/cgast/nrfu/pkg/events"
	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/platform"
)

// CaptureResult records the baseline captured for one domain.
type CaptureResult struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Capture generates a baseline from the device's current state and saves
// it through sink, one document per domain. Domains that generate no test
// cases are skipped and nothing is written for them.
func (e *Engine) Capture(ctx context.Context, fetcher platform.Fetcher, sink CaseSink, domains []nrfu.Domain) ([]CaptureResult, error) {
	results := make([]CaptureResult, len(domains))

	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i, d := range domains {
		i, d := i, d
		p.Go(func() {
			results[i] = e.captureOne(ctx, fetcher, sink, d)
		})
	}
	p.Wait()
	return results, ctx.Err()
}

func (e *Engine) captureOne(ctx context.Context, fetcher platform.Fetcher, sink CaseSink, d nrfu.Domain) CaptureResult {
	l := logger.WithField("domain", d.Name())
	res := CaptureResult{Domain: d.Name()}

	snapshot, err := e.fetch(ctx, fetcher, d)
	if err != nil {
		l.WithError(err).Error("Failed to fetch snapshot")
		res.Status, res.Error = StatusError, err.Error()
		return res
	}

	cases, err := d.Generate(snapshot, e.device)
	if err != nil {
		l.WithError(err).Error("Failed to generate test cases")
		res.Status, res.Error = StatusError, err.Error()
		return res
	}
	if len(cases) == 0 {
		l.Info("No test cases generated, skipping")
		res.Status, res.Reason = StatusSkipped, "no tests"
		return res
	}

	if err := sink.Save(d.Name(), cases); err != nil {
		l.WithError(err).Error("Failed to save baseline")
		res.Status, res.Error = StatusError, err.Error()
		return res
	}

	e.bus.Publish(events.NewDomainEvent(events.EventBaselineSaved, d.Name(), len(cases)))
	res.Status, res.Count = StatusPass, len(cases)
	return res
}
