package core

import "sync"

type GuardState string

const (
	GuardIdle GuardState = "idle"
	GuardBusy GuardState = "busy"
)

// ReentrancyGuard serializes nested logical calls into a guarded operation.
// A second acquisition while Busy fails immediately; it never queues or
// blocks, because the caller that finds the guard Busy is by definition
// untrusted code re-entering mid-operation. The mutex only protects the flag
// itself so parallel goroutines cannot both observe Idle.
type ReentrancyGuard struct {
	mu    sync.Mutex
	state GuardState
}

func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{state: GuardIdle}
}

func (g *ReentrancyGuard) State() GuardState {
	if g == nil {
		return GuardIdle
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == "" {
		return GuardIdle
	}
	return g.state
}

// Acquire transitions Idle -> Busy and returns the release function. The
// release is idempotent and must run on every exit path; callers defer it
// immediately so the guard returns to Idle even on error propagation.
func (g *ReentrancyGuard) Acquire() (func(), error) {
	if g == nil {
		return nil, ErrReentrant
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GuardBusy {
		return nil, ErrReentrant
	}
	g.state = GuardBusy

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.state = GuardIdle
		})
	}
	return release, nil
}
