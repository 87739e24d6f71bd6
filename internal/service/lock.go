package service

import (
	"sync"

	"github.com/storepilot/storepilot/internal/domain"
)

// agentLocks is the one true mutual-exclusion resource in the system: the
// per-agent execution slot. A slot is held for the duration of a run and
// released on every exit path. Acquisition is fail-fast: a second run request
// against a busy agent is rejected, not queued.
type agentLocks struct {
	locks map[domain.AgentType]*sync.Mutex
}

// newAgentLocks builds one lock per roster member. The roster is fixed, so
// the map itself is never mutated after construction.
func newAgentLocks() *agentLocks {
	locks := make(map[domain.AgentType]*sync.Mutex, len(domain.AllAgentTypes))
	for _, agentType := range domain.AllAgentTypes {
		locks[agentType] = &sync.Mutex{}
	}
	return &agentLocks{locks: locks}
}

// tryAcquire claims the agent's execution slot. Returns false if the agent is
// already running or the type is unknown.
func (l *agentLocks) tryAcquire(agentType domain.AgentType) bool {
	mu, ok := l.locks[agentType]
	if !ok {
		return false
	}
	return mu.TryLock()
}

// release frees the agent's execution slot.
func (l *agentLocks) release(agentType domain.AgentType) {
	if mu, ok := l.locks[agentType]; ok {
		mu.Unlock()
	}
}
