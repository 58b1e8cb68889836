// Package store holds the single current alert's lifecycle state.
//
// The Store is process-wide, owned by the orchestrator and handed to every
// component as an explicit dependency. All transitions go through one
// generation-checked mutation point, so a dismiss racing an in-flight
// decision capture resolves deterministically: whichever writes first wins
// the generation, and the loser's compare-and-swap fails.
package store
