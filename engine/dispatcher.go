package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Dispatcher races engines with staged escalation: engines[0] starts at once,
// engines[i] starts after delays[i] unless an earlier engine already won or
// failed terminally. It implements Engine so callers need not know whether
// one or several engines are configured.
type Dispatcher struct {
	engines []Engine
	delays  []time.Duration
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher. Missing delays default to zero; memory
// may be nil.
func NewDispatcher(engines []Engine, delays []time.Duration, memory *DomainMemory) *Dispatcher {
	d := make([]time.Duration, len(engines))
	copy(d, delays)
	return &Dispatcher{engines: engines, delays: d, memory: memory}
}

func (d *Dispatcher) Name() string { return "dispatcher" }

// Fetch tries the engine remembered for the host first, then races all
// engines. When every engine fails, the error of the lowest tier is returned
// since it carries the most specific cause (status, content type, DNS).
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}
	host := hostOf(req.URL)

	if name := d.memory.Get(host); name != "" {
		for _, eng := range d.engines {
			if eng.Name() != name {
				continue
			}
			result, err := eng.Fetch(ctx, req)
			if err == nil {
				return result, nil
			}
			if isTerminal(err) || ctx.Err() != nil {
				return nil, err
			}
			slog.Info("remembered engine failed, racing all engines",
				"host", host, "engine", name, "error", err)
			d.memory.Delete(host)
			break
		}
	}

	return d.race(ctx, req, host)
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest, host string) (*FetchResult, error) {
	type outcome struct {
		tier   int
		result *FetchResult
		err    error
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan outcome, len(d.engines))
	var wg sync.WaitGroup

	for i, eng := range d.engines {
		wg.Add(1)
		go func(tier int, e Engine, delay time.Duration) {
			defer wg.Done()
			if delay > 0 {
				timer := time.NewTimer(delay)
				defer timer.Stop()
				select {
				case <-raceCtx.Done():
					return
				case <-timer.C:
				}
			}
			if raceCtx.Err() != nil {
				return
			}
			result, err := e.Fetch(raceCtx, req)
			if err != nil {
				slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
			}
			outcomes <- outcome{tier: tier, result: result, err: err}
		}(i, eng, d.delays[i])
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	errs := make([]error, len(d.engines))
	for o := range outcomes {
		if o.err == nil {
			cancel()
			d.memory.Set(host, o.result.EngineName)
			return o.result, nil
		}
		errs[o.tier] = o.err
		if isTerminal(o.err) {
			cancel()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
