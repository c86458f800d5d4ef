// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "sync"

// reentrancyGuard gates every externally reachable mutating operation: at
// most one may be mid-flight per pair. Because settlement calls out to the
// oracle controller and to token transfer primitives, a collaborator invoked
// mid-call could call back into the pair; the guard makes any such reentrant
// call fail immediately with ErrLocked.
type reentrancyGuard struct {
	mu     sync.Mutex
	locked bool
}

// acquire takes the guard and returns its release func. Callers defer the
// release so every exit path, abort included, lets go of the guard.
func (g *reentrancyGuard) acquire() (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return nil, ErrLocked
	}
	g.locked = true
	return func() {
		g.mu.Lock()
		g.locked = false
		g.mu.Unlock()
	}, nil
}
