package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

var (
	ErrInvalidLimit      = errors.New("invalid feed limit")
	ErrUntrackedSeverity = errors.New("severity has no trend window")
)

const (
	DefaultWindowLength = 150
	DefaultInterval     = 3 * time.Second
)

type Options struct {
	WindowLength int           // samples per trend window (L)
	Interval     time.Duration // spacing between samples
	MaxAlerts    int           // cap on the backing sequence; 0 keeps everything
	Sampler      Sampler       // defaults to AggregateSampler
	Now          func() time.Time
}

// Snapshot is a consistent read of the backing sequence. Alerts is shared
// with the store and must not be modified.
type Snapshot struct {
	Alerts      []models.Alert // newest first
	Version     uint64
	LastUpdated time.Time
}

// Store owns the alert history and the per-severity trend windows.
// Writes replace the backing slices instead of mutating them, so a
// Snapshot never observes a partial update.
type Store struct {
	mu          sync.RWMutex
	opts        Options
	alerts      []models.Alert
	version     uint64
	lastUpdated time.Time
	windows     map[models.Severity][]models.TrendSample
	sampledAt   map[models.Severity]uint64 // version covered by the newest sample
}

func New(opts Options) *Store {
	if opts.WindowLength <= 0 {
		opts.WindowLength = DefaultWindowLength
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxAlerts < 0 {
		opts.MaxAlerts = 0
	}
	if opts.Sampler == nil {
		opts.Sampler = AggregateSampler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		opts:        opts,
		lastUpdated: opts.Now(),
		windows:     make(map[models.Severity][]models.TrendSample, len(models.TrackedSeverities)),
		sampledAt:   make(map[models.Severity]uint64, len(models.TrackedSeverities)),
	}
	for _, sev := range models.TrackedSeverities {
		s.windows[sev] = s.populate(sev)
	}
	return s
}

func (s *Store) WindowLength() int {
	return s.opts.WindowLength
}

func (s *Store) Interval() time.Duration {
	return s.opts.Interval
}

// Ingest prepends a to the feed.
func (s *Store) Ingest(a models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := len(s.alerts)
	if s.opts.MaxAlerts > 0 && keep >= s.opts.MaxAlerts {
		keep = s.opts.MaxAlerts - 1
	}

	next := make([]models.Alert, 0, keep+1)
	next = append(next, a)
	next = append(next, s.alerts[:keep]...)

	s.alerts = next
	s.version++
	s.lastUpdated = s.opts.Now()
}

// Feed returns up to limit alerts, newest first.
func (s *Store) Feed(limit int) ([]models.Alert, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	snap := s.Snapshot()
	n := min(limit, len(snap.Alerts))
	return slices.Clone(snap.Alerts[:n]), nil
}

// FeedBySeverity is Feed restricted to one severity class.
func (s *Store) FeedBySeverity(limit int, sev models.Severity) ([]models.Alert, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	snap := s.Snapshot()
	out := make([]models.Alert, 0, min(limit, len(snap.Alerts)))
	for _, a := range snap.Alerts {
		if len(out) == limit {
			break
		}
		if a.Severity == sev {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Alerts:      s.alerts,
		Version:     s.version,
		LastUpdated: s.lastUpdated,
	}
}

func (s *Store) CountBySeverity(sev models.Severity) int {
	return CountSeverity(s.Snapshot().Alerts, sev)
}

// Counts returns the count for every severity class, including zeros.
func (s *Store) Counts() map[models.Severity]int {
	return CountAll(s.Snapshot().Alerts)
}

func (s *Store) Total() int {
	return len(s.Snapshot().Alerts)
}

func (s *Store) LastUpdated() time.Time {
	return s.Snapshot().LastUpdated
}

// Tick appends one sample stamped now to the window for sev and evicts the
// oldest one. The window length never changes. The sample covers every
// alert ingested since the previous sample of sev, whatever its timestamp,
// so each alert lands in exactly one tick.
func (s *Store) Tick(sev models.Severity) (models.TrendSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.windows[sev]
	if !ok {
		return models.TrendSample{}, fmt.Errorf("%w: %s", ErrUntrackedSeverity, sev)
	}

	// The feed is newest first, so the alerts ingested since the last
	// sample are its head. A cap may have dropped some of them already.
	fresh := min(s.version-s.sampledAt[sev], uint64(len(s.alerts)))
	sample := models.TrendSample{
		Timestamp: s.opts.Now(),
		Count:     s.opts.Sampler.Sample(sev, s.alerts[:fresh]),
	}
	s.sampledAt[sev] = s.version

	next := make([]models.TrendSample, len(current))
	copy(next, current[1:])
	next[len(next)-1] = sample
	s.windows[sev] = next

	return sample, nil
}

// Trend returns the window for sev, oldest sample first.
func (s *Store) Trend(sev models.Severity) ([]models.TrendSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples, ok := s.windows[sev]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUntrackedSeverity, sev)
	}
	return slices.Clone(samples), nil
}

// Reset repopulates the window for sev with samples evenly spaced by the
// store interval and ending now.
func (s *Store) Reset(sev models.Severity) ([]models.TrendSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.windows[sev]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUntrackedSeverity, sev)
	}

	samples := s.populate(sev)
	s.windows[sev] = samples
	return slices.Clone(samples), nil
}

// populate buckets the feed by timestamp into samples ending now. The
// sample at t covers (t-interval, t]. It must be called with mu held for
// writing, or before s is shared.
func (s *Store) populate(sev models.Severity) []models.TrendSample {
	n := s.opts.WindowLength
	iv := s.opts.Interval
	now := s.opts.Now()

	buckets := make([][]models.Alert, n)
	for _, a := range s.alerts {
		age := now.Sub(a.Timestamp)
		if age < 0 {
			continue
		}
		// Newest first, give or take queueing delay between generation
		// and ingest. One extra interval absorbs that before stopping.
		if age >= time.Duration(n+1)*iv {
			break
		}
		if i := n - 1 - int(age/iv); i >= 0 {
			buckets[i] = append(buckets[i], a)
		}
	}

	samples := make([]models.TrendSample, n)
	for i := range samples {
		samples[i] = models.TrendSample{
			Timestamp: now.Add(-time.Duration(n-1-i) * iv),
			Count:     s.opts.Sampler.Sample(sev, buckets[i]),
		}
	}
	s.sampledAt[sev] = s.version
	return samples
}

func CountSeverity(alerts []models.Alert, sev models.Severity) int {
	n := 0
	for _, a := range alerts {
		if a.Severity == sev {
			n++
		}
	}
	return n
}

func CountAll(alerts []models.Alert) map[models.Severity]int {
	counts := make(map[models.Severity]int, len(models.Severities))
	for _, sev := range models.Severities {
		counts[sev] = 0
	}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}
