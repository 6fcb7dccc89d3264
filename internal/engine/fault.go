package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors matched through errors.Is on a *SimulationFault.
var (
	ErrTimeout      = errors.New("engine: tick budget exhausted")
	ErrDeadlock     = errors.New("engine: deadlock, every unfinished vehicle is blocked")
	ErrZeroCapacity = errors.New("engine: edge with zero capacity requested")
	ErrInvariant    = errors.New("engine: invariant violated")
	ErrCanceled     = errors.New("engine: run canceled")
)

// FaultKind classifies why a run stopped before every vehicle finished.
type FaultKind int

const (
	FaultTimeout FaultKind = iota
	FaultDeadlock
	FaultZeroCapacity
	FaultInvariant
	FaultCanceled
)

func (k FaultKind) String() string {
	return [...]string{"Timeout", "Deadlock", "ZeroCapacity", "Invariant", "Canceled"}[k]
}

func (k FaultKind) sentinel() error {
	return [...]error{ErrTimeout, ErrDeadlock, ErrZeroCapacity, ErrInvariant, ErrCanceled}[k]
}

// SimulationFault reports a run that could not complete.
type SimulationFault struct {
	Kind FaultKind
	Tick int

	// Vehicle is the index of the vehicle being served when the fault
	// happened, or -1 when the fault is not tied to one vehicle.
	Vehicle int

	// Blocked lists the vehicles stuck in a deadlock.
	Blocked []int

	// Err is the underlying cause, if any.
	Err error
}

func (f *SimulationFault) Error() string {
	msg := fmt.Sprintf("%s at tick %d", f.Kind.sentinel(), f.Tick)
	if f.Vehicle >= 0 {
		msg += fmt.Sprintf(" (vehicle %d)", f.Vehicle)
	}
	if len(f.Blocked) > 0 {
		msg += fmt.Sprintf(" blocked=%v", f.Blocked)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind's sentinel and the underlying cause.
func (f *SimulationFault) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind.sentinel()}
	}
	return []error{f.Kind.sentinel(), f.Err}
}

func newFault(kind FaultKind, tick, vehicle int, err error) *SimulationFault {
	return &SimulationFault{Kind: kind, Tick: tick, Vehicle: vehicle, Err: err}
}
