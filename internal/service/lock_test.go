package service

import (
	"sync"
	"testing"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAgentLocks_TryAcquire(t *testing.T) {
	locks := newAgentLocks()

	assert.True(t, locks.tryAcquire(domain.AgentTypeContent))
	assert.False(t, locks.tryAcquire(domain.AgentTypeContent), "second acquire must fail fast")

	// Other agents are unaffected
	assert.True(t, locks.tryAcquire(domain.AgentTypeSales))

	locks.release(domain.AgentTypeContent)
	assert.True(t, locks.tryAcquire(domain.AgentTypeContent), "released lock must be reusable")
}

func TestAgentLocks_UnknownType(t *testing.T) {
	locks := newAgentLocks()
	assert.False(t, locks.tryAcquire(domain.AgentType("janitor")))
}

func TestAgentLocks_ConcurrentAcquire(t *testing.T) {
	locks := newAgentLocks()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- locks.tryAcquire(domain.AgentTypeStrategy)
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for ok := range results {
		if ok {
			successCount++
		}
	}
	assert.Equal(t, 1, successCount, "exactly one concurrent acquire should succeed")
}
