package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

const (
	destinationIP = "10.0.0.5"
	description   = "Automatic anomaly detection triggered."
)

var (
	ruleNames  = []string{"SQL Injection", "DDoS Attack", "Brute Force", "Malware Detected", "Port Scan"}
	edgeGroups = []string{"Cathay Bank HQ", "Taipei 101", "Taimall", "Carrefour", "Arcade"}
	statuses   = []models.Status{models.StatusNew, models.StatusInvestigating}
)

// Generator synthesizes random alerts. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New returns a generator seeded with seed. A zero seed uses the current time.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) Generate() models.Alert {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	return models.Alert{
		ID:            fmt.Sprintf("evt-%d-%d", now.UnixMilli(), g.rng.IntN(1000)),
		Timestamp:     now,
		RuleName:      pick(g.rng, ruleNames),
		SourceIP:      fmt.Sprintf("192.168.%d.%d", g.rng.IntN(256), g.rng.IntN(256)),
		DestinationIP: destinationIP,
		Severity:      pick(g.rng, models.Severities),
		Status:        pick(g.rng, statuses),
		EdgeGroup:     pick(g.rng, edgeGroups),
		Description:   description,
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
