package apidrift

import (
	"sync"

	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/reconciler"
)

// Hook function types for reconciliation events
type (
	// ConflictHook is called once per conflict in a merged set.
	ConflictHook func(entry reconciler.Entry, conflict conflicts.Conflict)

	// FallbackHook is called for entries whose AI resolution fell back to rules.
	FallbackHook func(entry reconciler.Entry)

	// CompleteHook is called after a successful Reconcile.
	CompleteHook func(set *reconciler.MergedSet)
)

// hooks manages event callbacks for reconciliation results
type hooks struct {
	mu         sync.RWMutex
	onConflict []ConflictHook
	onFallback []FallbackHook
	onComplete []CompleteHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnConflict registers a callback for every conflict found
func (h *hooks) OnConflict(fn ConflictHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConflict = append(h.onConflict, fn)
}

// OnFallback registers a callback for AI fallbacks
func (h *hooks) OnFallback(fn FallbackHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFallback = append(h.onFallback, fn)
}

// OnComplete registers a callback for finished runs
func (h *hooks) OnComplete(fn CompleteHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onComplete = append(h.onComplete, fn)
}

// trigger walks the set in entry order and fires the registered hooks.
func (h *hooks) trigger(set *reconciler.MergedSet) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, e := range set.Entries {
		for _, c := range e.Conflicts {
			for _, hook := range h.onConflict {
				hook(e, c)
			}
		}
		if e.Resolution.Fallback {
			for _, hook := range h.onFallback {
				hook(e)
			}
		}
	}
	for _, hook := range h.onComplete {
		hook(set)
	}
}
