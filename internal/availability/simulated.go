package availability

import (
	"context"
	"math/rand"
	"sync"

	"github.com/coachsite/booking-widget/internal/calendar"
)

// DefaultRetention is the fraction of canonical slots the simulated
// provider keeps per query, mimicking a partially booked day.
const DefaultRetention = 0.7

// SimulatedProvider stands in for a live scheduling backend in demo
// deployments. It drops a random share of the canonical slots. Never use
// it where real availability matters; it exists so the widget can run
// without a backend.
type SimulatedProvider struct {
	mu        sync.Mutex
	rng       *rand.Rand
	retention float64
}

// NewSimulatedProvider creates a simulated provider driven by the given
// source. Tests pass a seeded source for deterministic output.
func NewSimulatedProvider(src rand.Source, retention float64) *SimulatedProvider {
	if retention <= 0 || retention > 1 {
		retention = DefaultRetention
	}
	return &SimulatedProvider{
		rng:       rand.New(src),
		retention: retention,
	}
}

// Slots returns a random subset of the canonical slots, or nothing for a
// non-bookable day.
func (p *SimulatedProvider) Slots(_ context.Context, day calendar.Day) ([]Slot, error) {
	if !day.Bookable {
		return []Slot{}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	slots := make([]Slot, 0, len(CanonicalSlots))
	for _, label := range CanonicalSlots {
		if p.rng.Float64() < p.retention {
			slots = append(slots, Slot{Date: day.ISODate(), Label: label})
		}
	}
	return slots, nil
}
