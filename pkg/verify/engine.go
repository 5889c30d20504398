package verify

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/cgast/nrfu/pkg/events"
	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/platform"
	"github.com/cgast/nrfu/pkg/testcases"
)

var logger = log.WithFields(log.Fields{
	"package": "verify",
})

// DefaultConcurrency is the number of domains run at once.
const DefaultConcurrency = 4

// CaseSource supplies the test cases of a domain. It returns an error
// wrapping testcases.ErrNotFound when the domain has none.
type CaseSource interface {
	Load(domain string) ([]nrfu.TestCase, error)
}

// CaseSink persists a generated baseline.
type CaseSink interface {
	Save(domain string, cases []nrfu.TestCase) error
}

// Option configures the Engine.
type Option func(*Engine)

// WithFailFast stops verification at the first failed test case. Domains
// not yet started are reported as skipped.
func WithFailFast(ff bool) Option {
	return func(e *Engine) {
		e.failFast = ff
	}
}

// WithConcurrency bounds how many domains run at once. Values below one
// are treated as one.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

// WithBus publishes progress events to bus.
func WithBus(bus events.EventBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithDevice names the device under test in reports and generated cases.
func WithDevice(name string) Option {
	return func(e *Engine) {
		e.device = name
	}
}

// Engine runs domains against a device: it fetches each domain's snapshot
// and either validates the stored test cases or captures a new baseline.
type Engine struct {
	failFast    bool
	concurrency int
	bus         events.EventBus
	device      string
}

// NewEngine creates a new verification engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{concurrency: DefaultConcurrency, bus: events.Nop{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run verifies every domain and returns the report. Results keep the order
// of domains regardless of concurrency. A fetch or load failure marks only
// its own domain as errored. The returned error is non-nil only when ctx
// is done.
func (e *Engine) Run(ctx context.Context, fetcher platform.Fetcher, source CaseSource, domains []nrfu.Domain) (*Report, error) {
	report := &Report{
		Device:    e.device,
		Timestamp: time.Now(),
		Domains:   make([]DomainResult, len(domains)),
	}
	e.bus.Publish(events.NewEvent(events.EventRunStart, e.device))
	logger.WithField("device", e.device).WithField("domains", len(domains)).Info("Verification: starting...")

	var failed atomic.Bool
	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i, d := range domains {
		i, d := i, d
		p.Go(func() {
			if e.failFast && failed.Load() {
				report.Domains[i] = skipped(d, "fail-fast")
				return
			}
			dr := e.verifyOne(ctx, fetcher, source, d)
			if dr.Status == StatusFail || dr.Status == StatusError {
				failed.Store(true)
			}
			report.Domains[i] = dr
		})
	}
	p.Wait()

	report.Passed = true
	for _, d := range report.Domains {
		if d.Status == StatusFail || d.Status == StatusError {
			report.Passed = false
		}
	}

	e.bus.Publish(events.NewEvent(events.EventRunEnd, report.Totals()))
	logger.WithField("device", e.device).WithField("passed", report.Passed).Info("Verification: done.")
	return report, ctx.Err()
}

func (e *Engine) verifyOne(ctx context.Context, fetcher platform.Fetcher, source CaseSource, d nrfu.Domain) DomainResult {
	l := logger.WithField("domain", d.Name())

	cases, err := source.Load(d.Name())
	switch {
	case errors.Is(err, testcases.ErrNotFound):
		l.Info("No test cases, skipping")
		return e.skip(d, "no tests")
	case err != nil:
		l.WithError(err).Error("Failed to load test cases")
		return e.fail(d, err)
	case len(cases) == 0:
		l.Info("Empty test case document, skipping")
		return e.skip(d, "no tests")
	}

	e.bus.Publish(events.NewDomainEvent(events.EventDomainStart, d.Name(), d.Command()))
	snapshot, err := e.fetch(ctx, fetcher, d)
	if err != nil {
		l.WithError(err).Error("Failed to fetch snapshot")
		return e.fail(d, err)
	}

	dr := VerifyDomain(d, snapshot, cases, e.failFast)
	for _, c := range dr.Cases {
		e.bus.Publish(events.NewDomainEvent(events.EventCaseResult, d.Name(), c))
		if c.Status != StatusPass {
			l.WithField("case", c.Label).WithField("status", c.Status).Debug(c.Message)
		}
	}

	ev := events.NewDomainEvent(events.EventDomainEnd, d.Name(), dr.Status)
	ev.Duration = dr.Duration
	e.bus.Publish(ev)
	l.WithField("status", dr.Status).WithField("cases", len(dr.Cases)).Info("Domain verified")
	return dr
}

func (e *Engine) fetch(ctx context.Context, fetcher platform.Fetcher, d nrfu.Domain) ([]byte, error) {
	start := time.Now()
	data, err := fetcher.Fetch(ctx, d.Command())
	if err != nil {
		return nil, err
	}
	ev := events.NewDomainEvent(events.EventSnapshotFetched, d.Name(), len(data))
	ev.Duration = time.Since(start)
	e.bus.Publish(ev)
	return data, nil
}

func (e *Engine) skip(d nrfu.Domain, reason string) DomainResult {
	e.bus.Publish(events.NewDomainEvent(events.EventDomainSkipped, d.Name(), reason))
	return skipped(d, reason)
}

func (e *Engine) fail(d nrfu.Domain, err error) DomainResult {
	ev := events.NewDomainEvent(events.EventDomainEnd, d.Name(), StatusError)
	e.bus.Publish(ev)
	return DomainResult{Domain: d.Name(), Command: d.Command(), Status: StatusError, Error: err.Error()}
}

func skipped(d nrfu.Domain, reason string) DomainResult {
	return DomainResult{Domain: d.Name(), Command: d.Command(), Status: StatusSkipped, Reason: reason}
}
