package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"threat-sentinel/internal/model"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 7
	maxSize    = 1500
)

// Generator produces synthetic network events from closed value sets.
// Identifiers are short random tokens; collisions are not guarded against.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New returns a generator. A zero seed draws from a time-based source,
// any other seed makes the sequence of fields reproducible.
func New(seed uint64) *Generator {
	return NewWithClock(seed, time.Now)
}

func NewWithClock(seed uint64, now func() time.Time) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now,
	}
}

// Generate returns a fresh event with exactly one flag
func (g *Generator) Generate() model.NetworkEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	return model.NetworkEvent{
		ID:            g.token(),
		Timestamp:     g.now().Truncate(time.Millisecond),
		SourceIP:      fmt.Sprintf("192.168.%d.%d", g.rnd.IntN(256), g.rnd.IntN(256)),
		DestinationIP: fmt.Sprintf("10.0.%d.%d", g.rnd.IntN(256), g.rnd.IntN(256)),
		Protocol:      model.Protocols[g.rnd.IntN(len(model.Protocols))],
		Size:          g.rnd.IntN(maxSize),
		Flags:         []model.Flag{model.Flags[g.rnd.IntN(len(model.Flags))]},
	}
}

func (g *Generator) token() string {
	b := make([]byte, idLength)
	for i := range b {
		b[i] = idAlphabet[g.rnd.IntN(len(idAlphabet))]
	}
	return string(b)
}
