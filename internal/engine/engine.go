package engine

import (
	"context"
	"fmt"

	"github.com/vk/congestsim/internal/ctxlog"
	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/vehicle"
)

// State is where a vehicle is in its trip.
type State int

const (
	Entering State = iota
	Transiting
	Waiting
	Finished
)

func (s State) String() string {
	return [...]string{"Entering", "Transiting", "Waiting", "Finished"}[s]
}

// vehicleState is the engine's private bookkeeping for one vehicle.
type vehicleState struct {
	state    State
	location graph.VertexID
	edge     graph.EdgeID // graph.NoEdge while not on an edge
	wait     int

	cost       int
	transit    int
	waits      int
	finishedAt int
}

// VehicleResult is the outcome for one vehicle.
type VehicleResult struct {
	Index        int
	State        State
	Cost         int
	TransitTicks int
	WaitTicks    int

	// FinishedAt is the tick the vehicle left the network, or -1.
	FinishedAt int
}

// Result is the outcome of a run, complete or partial.
type Result struct {
	Policy   Policy
	Ticks    int
	Vehicles []VehicleResult
	Total    int
}

// Engine steps a vehicle set over a graph. It consumes the vehicles' path
// queues and owns the graph's edge load for the duration of the run.
type Engine struct {
	g        *graph.Graph
	vehicles []*vehicle.Vehicle
	opts     Options

	states   []vehicleState
	tick     int
	finished int
}

// New prepares a run: edge loads are reset and every vehicle is placed on
// the first vertex of its path, which is consumed.
func New(g *graph.Graph, vehicles []*vehicle.Vehicle, opts Options) (*Engine, error) {
	g.ResetLoads()

	e := &Engine{
		g:        g,
		vehicles: vehicles,
		opts:     opts,
		states:   make([]vehicleState, len(vehicles)),
	}
	for i, v := range vehicles {
		start, ok := v.Path.Pop()
		if !ok {
			return nil, newFault(FaultInvariant, 0, i, fmt.Errorf("vehicle %s has an empty path", v))
		}
		e.states[i] = vehicleState{
			state:      Entering,
			location:   start,
			edge:       graph.NoEdge,
			finishedAt: -1,
		}
	}
	return e, nil
}

// Tick returns the number of ticks simulated so far.
func (e *Engine) Tick() int { return e.tick }

// Done reports whether every vehicle has finished.
func (e *Engine) Done() bool { return e.finished == len(e.vehicles) }

// Snapshot copies the network with current loads.
func (e *Engine) Snapshot() graph.Snapshot { return e.g.Snapshot() }

// Location returns where vehicle i currently is and which edge it occupies.
func (e *Engine) Location(i int) (graph.VertexID, graph.EdgeID) {
	return e.states[i].location, e.states[i].edge
}

// Step simulates one tick.
func (e *Engine) Step(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	tick := e.tick

	var entered, left int
	var blocked []int

	for i, v := range e.vehicles {
		st := &e.states[i]
		if st.state == Finished {
			continue
		}

		if st.wait == 0 {
			next, ok := v.Path.Head()
			if !ok {
				if err := e.release(st); err != nil {
					return newFault(FaultInvariant, tick, i, err)
				}
				st.state = Finished
				st.location = graph.NoVertex
				st.finishedAt = tick
				e.finished++
				left++
				logger.Debug("Vehicle finished.", "tick", tick, "vehicle", i, "cost", st.cost)
				continue
			}

			id, ok := e.g.Lookup(st.location, next)
			if !ok {
				return newFault(FaultInvariant, tick, i, fmt.Errorf("%w: (%d,%d)", graph.ErrEdgeNotFound, st.location, next))
			}
			edge, _ := e.g.Edge(id)
			if edge.Capacity == 0 {
				return newFault(FaultZeroCapacity, tick, i, fmt.Errorf("edge (%d,%d)", edge.Start, edge.End))
			}

			if e.g.Full(id) {
				st.state = Waiting
				st.wait = 1
				st.waits++
				if e.opts.Policy == WaitInclusive {
					st.cost++
				}
				blocked = append(blocked, i)
				logger.Debug("Vehicle blocked.", "tick", tick, "vehicle", i, "start", edge.Start, "end", edge.End, "load", edge.Load)
			} else {
				if err := e.release(st); err != nil {
					return newFault(FaultInvariant, tick, i, err)
				}
				if err := e.g.Acquire(id); err != nil {
					return newFault(FaultInvariant, tick, i, err)
				}
				delay := e.g.Delay(id)
				st.state = Transiting
				st.wait = delay
				st.location = next
				st.edge = id
				st.cost += delay
				st.transit += delay
				v.Path.Pop()
				entered++
				logger.Debug("Vehicle entered edge.", "tick", tick, "vehicle", i, "start", edge.Start, "end", edge.End, "delay", delay)
			}
		}

		// Every unfinished vehicle counts down, including one that entered an
		// edge during this same tick.
		if st.wait > 0 {
			st.wait--
		}
	}

	e.tick++

	if e.opts.DetectDeadlock && entered == 0 && left == 0 && len(blocked) > 0 && len(blocked) == len(e.vehicles)-e.finished {
		return &SimulationFault{Kind: FaultDeadlock, Tick: tick, Vehicle: -1, Blocked: blocked}
	}
	return nil
}

// Run steps until every vehicle has finished or a fault stops the run. The
// returned Result is always non-nil and holds the costs accrued so far.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Simulation starting.", "vehicles", len(e.vehicles), "policy", e.opts.Policy, "max_ticks", e.opts.MaxTicks)

	observer := e.opts.Observer
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return e.Result(), newFault(FaultCanceled, e.tick, -1, err)
		}
		if e.opts.MaxTicks > 0 && e.tick >= e.opts.MaxTicks {
			return e.Result(), newFault(FaultTimeout, e.tick, -1, nil)
		}
		if err := e.Step(ctx); err != nil {
			return e.Result(), err
		}
		if observer != nil {
			if err := observer.ObserveTick(e.tick-1, e.g.Snapshot()); err != nil {
				logger.Warn("Observer failed, detaching it for the rest of the run.", "tick", e.tick-1, "error", err)
				observer = nil
			}
		}
	}

	if load := e.g.TotalLoad(); load != 0 {
		return e.Result(), newFault(FaultInvariant, e.tick, -1, fmt.Errorf("%d vehicles still on edges after the run", load))
	}

	res := e.Result()
	logger.Debug("Simulation finished.", "ticks", res.Ticks, "total_cost", res.Total)
	return res, nil
}

// Result collects per-vehicle costs at the current tick.
func (e *Engine) Result() *Result {
	res := &Result{
		Policy:   e.opts.Policy,
		Ticks:    e.tick,
		Vehicles: make([]VehicleResult, len(e.states)),
	}
	for i, st := range e.states {
		res.Vehicles[i] = VehicleResult{
			Index:        i,
			State:        st.state,
			Cost:         st.cost,
			TransitTicks: st.transit,
			WaitTicks:    st.waits,
			FinishedAt:   st.finishedAt,
		}
		res.Total += st.cost
	}
	return res
}

// release frees the edge the vehicle occupies, if any.
func (e *Engine) release(st *vehicleState) error {
	if st.edge == graph.NoEdge {
		return nil
	}
	if err := e.g.Release(st.edge); err != nil {
		return err
	}
	st.edge = graph.NoEdge
	return nil
}
