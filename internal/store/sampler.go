package store

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

// Sampler produces the count for one trend sample. bucket holds the alerts
// that belong to the sample and must not be modified.
type Sampler interface {
	Sample(sev models.Severity, bucket []models.Alert) int
}

// AggregateSampler counts the alerts of the class in the bucket.
type AggregateSampler struct{}

func (AggregateSampler) Sample(sev models.Severity, bucket []models.Alert) int {
	return CountSeverity(bucket, sev)
}

type countRange struct {
	min, max int // [min, max)
}

var simulatedRanges = map[models.Severity]countRange{
	models.SeverityCritical: {2, 12},
	models.SeveritySevere:   {5, 20},
}

// SimulatedSampler draws counts independently of the feed, from a fixed
// range per class. Classes without a range always yield 0.
type SimulatedSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedSampler(seed uint64) *SimulatedSampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SimulatedSampler{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (s *SimulatedSampler) Sample(sev models.Severity, _ []models.Alert) int {
	r, ok := simulatedRanges[sev]
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return r.min + s.rng.IntN(r.max-r.min)
}
