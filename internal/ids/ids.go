// Package ids generates opaque request identifiers.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces ULIDs from a single monotonic entropy source,
// so ids created in the same millisecond still sort in creation order.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(seed)), 0),
	}
}

// NewAt returns an identifier stamped with the given time.
func (g *Generator) NewAt(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

var defaultGen = NewGenerator(time.Now().UnixNano())

// New returns a lexicographically sortable identifier, used for
// request ids and other opaque references.
func New() string {
	return defaultGen.NewAt(time.Now())
}
