// Package engine replays validated vehicle paths over a capacity-constrained
// road network in discrete ticks and accounts for what each trip cost.
//
// Each tick the engine serves every unfinished vehicle in index order. A
// vehicle that is not in transit either leaves the network (its path is
// exhausted), waits (the next edge is full), or enters the next edge and
// becomes busy for that edge's transit delay. The lower-indexed vehicle
// always wins the last free slot on an edge; this ordering is part of the
// result and must not be parallelised away.
//
// Runs end when every vehicle has finished. Because saturated edges can form
// a cycle that never drains, Run also stops on a tick budget (ErrTimeout) and,
// unless disabled, on a tick in which every unfinished vehicle was blocked
// and nothing moved (ErrDeadlock). Both are reported as *SimulationFault.
package engine
