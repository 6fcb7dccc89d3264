// Package hcl implements config.Loader for HCL settings files.
//
// A settings file may contain the blocks simulation, validation, logging,
// report and render. Expressions are evaluated with an "env" object holding
// the process environment and the functions min, max, upper and lower:
//
//	simulation {
//	  policy    = lower(env.CONGEST_POLICY)
//	  max_ticks = max(1000, 50000)
//	}
package hcl
