package stage

import "context"

// Handler describes the contract the workflow manager needs from each
// pipeline stage. Prepare validates preconditions cheaply; Execute does the
// work and mutates the shared State.
type Handler interface {
	Prepare(context.Context, *State) error
	Execute(context.Context, *State) error
	HealthCheck(context.Context) Health
}
