package numgen

import (
	"strconv"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// IDGenerator hands out time-ordered unique ids for history entries
type IDGenerator struct {
	sf *sonyflake.Sonyflake

	mu   sync.Mutex
	last int64
}

// NewIDGenerator builds a sonyflake generator with a fixed machine id, so it never depends on
// the host network configuration.
func NewIDGenerator(machineID uint16) *IDGenerator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) { return machineID, nil },
	})
	return &IDGenerator{sf: sf}
}

// Next returns a new id. When sonyflake is unavailable it falls back to a strictly
// increasing nanosecond timestamp.
func (g *IDGenerator) Next() string {
	if g.sf != nil {
		if id, err := g.sf.NextID(); err == nil {
			return strconv.FormatUint(id, 10)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixNano()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return strconv.FormatInt(now, 10)
}
