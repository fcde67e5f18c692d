package closing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/repository"
	"auction-engine/utils"
)

const (
	DefaultInterval     = time.Minute
	DefaultWorkers      = 4
	DefaultSweepTimeout = 30 * time.Second
)

// SweepReport counts what one sweep did
type SweepReport struct {
	Activated int
	Closed    int
	Skipped   int
	Failed    int
	// Pending is the number of auctions not dispatched because the sweep was cancelled
	Pending int
}

// Scheduler periodically activates due scheduled auctions and closes overdue
// active ones. Sweeps may overlap, in this process or another, because each
// auction is claimed with a conditional transition.
type Scheduler struct {
	repo         repository.AuctionDB
	closer       *Closer
	now          func() time.Time
	interval     time.Duration
	workers      int
	sweepTimeout time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithInterval sets the time between sweeps
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithWorkers sets how many auctions are processed in parallel
func WithWorkers(n int) Option {
	return func(s *Scheduler) { s.workers = n }
}

// WithSweepTimeout bounds a single sweep started by Run
func WithSweepTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.sweepTimeout = d }
}

// NewScheduler creates a Scheduler that uses the closer's clock
func NewScheduler(repo repository.AuctionDB, closer *Closer, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:         repo,
		closer:       closer,
		now:          closer.machine.Now,
		interval:     DefaultInterval,
		workers:      DefaultWorkers,
		sweepTimeout: DefaultSweepTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.sweepTimeout <= 0 {
		s.sweepTimeout = DefaultSweepTimeout
	}
	return s
}

// Run sweeps once immediately, then on every tick until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	utils.Info("Closing scheduler started", map[string]any{
		"interval": s.interval.String(),
		"workers":  s.workers,
	})
	s.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			utils.Info("Closing scheduler stopped", nil)
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.sweepTimeout)
	defer cancel()

	report, err := s.Sweep(ctx)
	if err != nil {
		utils.Error("Sweep failed", map[string]any{"error": err.Error()})
		return
	}
	if report.Activated+report.Closed+report.Failed+report.Pending == 0 {
		utils.Debug("Sweep complete", map[string]any{"skipped": report.Skipped})
		return
	}
	utils.Info("Sweep complete", map[string]any{
		"activated": report.Activated,
		"closed":    report.Closed,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
		"pending":   report.Pending,
	})
}

type job struct {
	auctionID string
	run       func(ctx context.Context, auctionID string) (Result, error)
}

// Sweep processes every due auction once. A failing or panicking auction is
// counted and logged without affecting the others. Cancelling ctx stops new
// auctions from being dispatched; auctions already in progress complete.
func (s *Scheduler) Sweep(ctx context.Context) (SweepReport, error) {
	now := s.now()

	startable, err := s.repo.ListStartableAuctions(ctx, now)
	if err != nil {
		return SweepReport{}, fmt.Errorf("closing: failed to list startable auctions: %w", err)
	}
	overdue, err := s.repo.ListOverdueAuctions(ctx, now)
	if err != nil {
		return SweepReport{}, fmt.Errorf("closing: failed to list overdue auctions: %w", err)
	}

	jobs := make([]job, 0, len(startable)+len(overdue))
	for _, a := range startable {
		jobs = append(jobs, job{auctionID: a.AuctionID, run: s.closer.ActivateAuction})
	}
	for _, a := range overdue {
		jobs = append(jobs, job{auctionID: a.AuctionID, run: s.closer.CloseAuction})
	}

	return s.dispatch(ctx, jobs), nil
}

func (s *Scheduler) dispatch(ctx context.Context, jobs []job) SweepReport {
	var (
		report SweepReport
		mu     sync.Mutex
		wg     sync.WaitGroup
	)
	workCh := make(chan job)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range workCh {
				outcome, err := s.process(ctx, j)

				mu.Lock()
				switch {
				case err != nil:
					report.Failed++
				case outcome == OutcomeActivated:
					report.Activated++
				case outcome == OutcomeClosed:
					report.Closed++
				default:
					report.Skipped++
				}
				mu.Unlock()
			}
		}()
	}

	dispatched := 0
feed:
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case workCh <- j:
			dispatched++
		}
	}
	close(workCh)
	wg.Wait()

	report.Pending = len(jobs) - dispatched
	return report
}

// process runs one job with panics converted to errors. The sequence for a
// single auction is not cancellable once started.
func (s *Scheduler) process(ctx context.Context, j job) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("closing: panic processing auction %s: %v", j.auctionID, r)
			utils.Alert("Recovered panic in sweep", map[string]any{
				"auction_id": j.auctionID,
				"panic":      fmt.Sprint(r),
			})
		}
	}()

	res, err := j.run(context.WithoutCancel(ctx), j.auctionID)
	if err != nil {
		utils.Error("Failed to process auction", map[string]any{
			"auction_id": j.auctionID,
			"error":      err.Error(),
		})
		return OutcomeSkipped, err
	}
	return res.Outcome, nil
}
