package indexer

import "sync/atomic"

// buildGuard admits one build at a time. Callers that lose the race are
// rejected with ErrBuildInProgress rather than queued.
type buildGuard struct {
	held atomic.Bool
}

func (g *buildGuard) tryEnter() bool {
	return g.held.CompareAndSwap(false, true)
}

func (g *buildGuard) leave() {
	g.held.Store(false)
}

func (g *buildGuard) busy() bool {
	return g.held.Load()
}
