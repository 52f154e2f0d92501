package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/renderdash/rdash/internal/domain"
	"github.com/renderdash/rdash/internal/index"
	"github.com/renderdash/rdash/internal/logger"
)

// Fetcher is the slice of the API client the refresher needs.
type Fetcher interface {
	GetServiceWithDeploy(ctx context.Context, id string) (*domain.Service, error)
}

// Refresher periodically reconciles the display set against live API
// state: one concurrent fetch per configured service, merged by
// service id, with per-service failure isolation. Automatic (timer)
// and manual (user-triggered) cycles may overlap; fetches are
// idempotent and the merge is last-writer-wins per id.
type Refresher struct {
	fetcher  Fetcher
	services []domain.ServiceConfig
	display  *index.DisplaySet
	logger   logger.Logger
	interval time.Duration

	stopCh        chan struct{}
	manualTrigger chan struct{}
	notify        chan<- struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once
}

// NewRefresher creates a refresher. notify, when non-nil, receives a
// best-effort signal after every completed cycle (the TUI bridges it
// into its message loop); sends never block.
func NewRefresher(
	fetcher Fetcher,
	services []domain.ServiceConfig,
	display *index.DisplaySet,
	log logger.Logger,
	interval time.Duration,
	notify chan<- struct{},
) *Refresher {
	return &Refresher{
		fetcher:       fetcher,
		services:      services,
		display:       display,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
		notify:        notify,
	}
}

// Start runs one immediate reconciliation, then begins the periodic
// cycle. Returns an error only when reconciliation cannot begin at
// all; partial per-service failures never fail a cycle.
func (r *Refresher) Start(ctx context.Context) error {
	if r.fetcher == nil {
		return fmt.Errorf("refresher has no API client")
	}
	if len(r.services) == 0 {
		return fmt.Errorf("no services configured")
	}

	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Refresh(ctx)
			case <-r.manualTrigger:
				r.logger.Info("manual refresh triggered")
				r.Refresh(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// TriggerRefresh requests an out-of-band reconciliation. Non-blocking:
// if a manual refresh is already pending, the request coalesces into
// it.
func (r *Refresher) TriggerRefresh() {
	select {
	case r.manualTrigger <- struct{}{}:
	default:
	}
}

// Stop cancels the periodic timer and waits for any in-flight cycle
// to finish. No background activity survives Stop.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
}

// outcome is one service's fetch result within a cycle.
type outcome struct {
	cfg domain.ServiceConfig
	svc *domain.Service
	err error
}

// Refresh runs one reconciliation cycle: fan out a fetch per
// configured service, settle all outcomes, then merge. Success
// replaces or inserts the display entry; failure evicts it so stale
// data is never shown. The last-refresh timestamp is bumped exactly
// once per cycle regardless of how many services failed.
func (r *Refresher) Refresh(ctx context.Context) {
	start := time.Now()
	outcomes := make([]outcome, len(r.services))

	var wg sync.WaitGroup
	for i, cfg := range r.services {
		wg.Add(1)
		go func(i int, cfg domain.ServiceConfig) {
			defer wg.Done()
			svc, err := r.fetcher.GetServiceWithDeploy(ctx, cfg.ID)
			outcomes[i] = outcome{cfg: cfg, svc: svc, err: err}
		}(i, cfg)
	}
	wg.Wait()

	var failures []index.Failure
	for _, o := range outcomes {
		if o.err != nil {
			r.display.Evict(o.cfg.ID)
			failures = append(failures, index.Failure{
				ServiceID: o.cfg.ID,
				Err:       o.err,
				At:        time.Now(),
			})
			r.logger.Warn("service fetch failed, evicting from display",
				logger.String("service_id", o.cfg.ID),
				logger.Error(o.err))
			continue
		}
		r.display.Upsert(o.svc, o.cfg.Priority)
	}

	r.display.MarkRefreshed(failures)
	r.logger.Info("reconciliation cycle complete",
		logger.Int("services", len(r.services)),
		logger.Int("failures", len(failures)),
		logger.Duration("took", time.Since(start)))

	if r.notify != nil {
		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
}
