package archsync

import (
	"sync"

	"github.com/agentstation/archsync/pkg/architecture"
	"github.com/agentstation/archsync/pkg/differ"
)

// Hook function types for workspace events
type (
	// CommitHook is called after a commit replaces the baseline
	CommitHook func(previous, next *architecture.Snapshot, changes *differ.Changeset)

	// MatchHook is called after matcher results are applied to the working copy
	MatchHook func(report *MatchReport)

	// ResolveHook is called after a change is approved or rejected
	ResolveHook func(change differ.Change)
)

// hooks manages event callbacks for workspace changes
type hooks struct {
	mu        sync.RWMutex
	onCommit  []CommitHook
	onMatch   []MatchHook
	onResolve []ResolveHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnCommit registers a callback for commits
func (h *hooks) OnCommit(fn CommitHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCommit = append(h.onCommit, fn)
}

// OnMatch registers a callback for match runs
func (h *hooks) OnMatch(fn MatchHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMatch = append(h.onMatch, fn)
}

// OnResolve registers a callback for resolved changes
func (h *hooks) OnResolve(fn ResolveHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onResolve = append(h.onResolve, fn)
}

func (h *hooks) triggerCommit(previous, next *architecture.Snapshot, changes *differ.Changeset) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onCommit {
		hook(previous, next, changes)
	}
}

func (h *hooks) triggerMatch(report *MatchReport) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onMatch {
		hook(report)
	}
}

func (h *hooks) triggerResolve(changes []differ.Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range changes {
		for _, hook := range h.onResolve {
			hook(c)
		}
	}
}
