package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandleLocksSerializePerHandle(t *testing.T) {
	locks := newHandleLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("alice")
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locks.size())
}

func TestHandleLocksAreIndependent(t *testing.T) {
	locks := newHandleLocks()

	unlockAlice := locks.lock("alice")
	// bob must not wait for alice
	unlockBob := locks.lock("bob")
	assert.Equal(t, 2, locks.size())

	unlockBob()
	unlockAlice()
	assert.Zero(t, locks.size())
}
