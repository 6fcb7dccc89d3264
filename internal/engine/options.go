package engine

import (
	"fmt"
	"strings"

	"github.com/vk/congestsim/internal/graph"
)

// Policy selects how a vehicle's cost accrues.
type Policy int

const (
	// TransitOnly charges only the transit delay of each edge entered.
	TransitOnly Policy = iota
	// WaitInclusive also charges one unit for every tick spent blocked.
	WaitInclusive
)

func (p Policy) String() string {
	switch p {
	case TransitOnly:
		return "transit"
	case WaitInclusive:
		return "wait"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "transit" / "transit-only" and "wait" / "wait-inclusive".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transit", "transit-only", "transit_only":
		return TransitOnly, nil
	case "wait", "wait-inclusive", "wait_inclusive":
		return WaitInclusive, nil
	default:
		return 0, fmt.Errorf("unknown cost policy %q: must be 'transit' or 'wait'", s)
	}
}

// DefaultMaxTicks bounds a run when no budget is configured.
const DefaultMaxTicks = 1_000_000

// Observer receives a copy of the network after every tick. It cannot reach
// the engine and nothing it does changes the run.
type Observer interface {
	ObserveTick(tick int, s graph.Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(tick int, s graph.Snapshot) error

// ObserveTick calls f.
func (f ObserverFunc) ObserveTick(tick int, s graph.Snapshot) error { return f(tick, s) }

// Options configures a run.
type Options struct {
	Policy Policy

	// MaxTicks stops the run with ErrTimeout once this many ticks have been
	// simulated. Zero means no budget.
	MaxTicks int

	// DetectDeadlock stops the run with ErrDeadlock on the first tick in
	// which nothing moved and every unfinished vehicle was blocked.
	DetectDeadlock bool

	Observer Observer
}

// DefaultOptions returns transit-only accounting with the default tick
// budget and deadlock detection enabled.
func DefaultOptions() Options {
	return Options{
		Policy:         TransitOnly,
		MaxTicks:       DefaultMaxTicks,
		DetectDeadlock: true,
	}
}
