package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/go-alert-dashboard/internal/config"
	"github.com/mr1hm/go-alert-dashboard/internal/metrics"
	"github.com/mr1hm/go-alert-dashboard/internal/models"
	"github.com/mr1hm/go-alert-dashboard/internal/store"
	"github.com/mr1hm/go-alert-dashboard/internal/stream"
	"github.com/mr1hm/go-alert-dashboard/internal/worker"
)

// AlertSource produces the next simulated alert.
type AlertSource interface {
	Generate() models.Alert
}

type ingestJob struct{ alert models.Alert }
type tickJob struct{ severity models.Severity }
type resetJob struct{ severity models.Severity }

// Manager drives the simulation. Timers only enqueue jobs; every store
// mutation runs on the pool's single worker.
type Manager struct {
	cfg         *config.Config
	store       *store.Store
	source      AlertSource
	broadcaster *stream.Broadcaster
	metrics     *metrics.Metrics
	pool        *worker.WorkerPool
	wg          sync.WaitGroup
	cancel      context.CancelFunc
	stopOnce    sync.Once
	hidden      atomic.Bool
}

func NewManager(cfg *config.Config, st *store.Store, source AlertSource, broadcaster *stream.Broadcaster, m *metrics.Metrics) *Manager {
	return &Manager{
		cfg:         cfg,
		store:       st,
		source:      source,
		broadcaster: broadcaster,
		metrics:     m,
	}
}

// NewStore builds the rolling store described by cfg.
func NewStore(cfg *config.Config) *store.Store {
	var sampler store.Sampler = store.AggregateSampler{}
	if cfg.Trend.Mode == config.TrendModeSimulated {
		sampler = store.NewSimulatedSampler(cfg.Sim.Seed)
	}

	return store.New(store.Options{
		WindowLength: cfg.Trend.Length,
		Interval:     cfg.Trend.Interval,
		MaxAlerts:    cfg.Feed.MaxAlerts,
		Sampler:      sampler,
	})
}

// Seed ingests alerts oldest first. Call it before Start.
func (m *Manager) Seed(alerts []models.Alert) {
	for _, a := range alerts {
		m.store.Ingest(a)
	}
	if m.metrics != nil {
		m.metrics.FeedSize.Set(float64(m.store.Total()))
	}
	slog.Info("seeded alert feed", "count", len(alerts))
}

// Start acquires the timers. They are released by Stop or when ctx ends.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.pool = worker.NewWorkerPool(1, m.cfg.Worker.BufferSize, m.process)
	m.pool.Start(ctx)

	m.wg.Add(2)
	go m.runTimer(ctx, "ingest", m.cfg.Sim.IngestInterval, m.ingestOnce)
	go m.runTimer(ctx, "trend", m.cfg.Trend.Interval, m.tickOnce)
}

// runTimer calls fn on every tick. fn runs on this goroutine only, so a
// slow callback delays the next one instead of overlapping it.
func (m *Manager) runTimer(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	defer m.wg.Done()
	slog.Info("starting timer", "timer", name, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("timer shutting down", "timer", name)
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (m *Manager) ingestOnce(ctx context.Context) {
	m.submit(ctx, ingestJob{alert: m.source.Generate()})
}

func (m *Manager) tickOnce(ctx context.Context) {
	if m.hidden.Load() {
		return
	}
	for _, sev := range models.TrackedSeverities {
		m.submit(ctx, tickJob{severity: sev})
	}
}

func (m *Manager) submit(ctx context.Context, job worker.Job) {
	err := m.pool.Submit(ctx, job)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, worker.ErrStopped) {
		return
	}
	slog.Warn("dropping simulation job", "job", fmt.Sprintf("%T", job), "error", err)
}

// Inject queues an externally built alert for ingestion.
func (m *Manager) Inject(ctx context.Context, a models.Alert) error {
	if m.pool == nil {
		return worker.ErrStopped
	}
	return m.pool.Submit(ctx, ingestJob{alert: a})
}

// Resync repopulates every trend window so it ends at the current time.
func (m *Manager) Resync(ctx context.Context) error {
	if m.pool == nil {
		return worker.ErrStopped
	}
	for _, sev := range models.TrackedSeverities {
		if err := m.pool.Submit(ctx, resetJob{severity: sev}); err != nil {
			return err
		}
	}
	return nil
}

// SetVisible records whether the dashboard is being watched. Trend ticks
// pause while hidden; becoming visible again triggers a Resync. It reports
// whether a resync was queued.
func (m *Manager) SetVisible(ctx context.Context, visible bool) (bool, error) {
	wasHidden := m.hidden.Swap(!visible)
	if !visible || !wasHidden {
		return false, nil
	}

	slog.Info("dashboard visible again, resyncing trend windows")
	if err := m.Resync(ctx); err != nil {
		// Stay hidden so a retry resyncs.
		m.hidden.Store(true)
		return false, err
	}
	return true, nil
}

func (m *Manager) Visible() bool {
	return !m.hidden.Load()
}

func (m *Manager) process(ctx context.Context, job worker.Job) error {
	switch j := job.(type) {
	case ingestJob:
		m.store.Ingest(j.alert)
		total := m.store.Total()
		if m.metrics != nil {
			m.metrics.ObserveIngest(j.alert.Severity, total)
		}
		a := j.alert
		m.publish(&models.Event{Type: models.EventAlert, At: time.Now(), Alert: &a, Total: total})
		slog.Debug("added alert", "id", a.ID, "severity", a.Severity, "rule", a.RuleName)

	case tickJob:
		sample, err := m.store.Tick(j.severity)
		if err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.ObserveTick(j.severity)
		}
		m.publish(&models.Event{
			Type:     models.EventTick,
			At:       sample.Timestamp,
			Severity: j.severity,
			Samples:  []models.TrendSample{sample},
		})

	case resetJob:
		samples, err := m.store.Reset(j.severity)
		if err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.ObserveReset(j.severity)
		}
		m.publish(&models.Event{
			Type:     models.EventReset,
			At:       samples[len(samples)-1].Timestamp,
			Severity: j.severity,
			Samples:  samples,
		})
		slog.Info("trend window reset", "severity", j.severity, "samples", len(samples))

	default:
		return fmt.Errorf("unknown simulation job %T", job)
	}

	return nil
}

func (m *Manager) publish(ev *models.Event) {
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(ev)
	}
}

// Stop releases the timers and waits for every simulation goroutine to
// exit. Jobs still queued are dropped. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
		if m.pool != nil {
			m.pool.Stop()
		}
		slog.Info("simulation manager stopped")
	})
}
