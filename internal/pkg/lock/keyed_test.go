package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedSerializesSameKey(t *testing.T) {
	k := NewKeyed()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := k.Acquire("subscription-1")
			counter++
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedIndependentKeysDoNotBlock(t *testing.T) {
	k := NewKeyed()

	releaseA := k.Acquire("a")
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := k.Acquire("b")
		release()
		close(done)
	}()
	<-done
}

func TestKeyedDropsUnusedEntries(t *testing.T) {
	k := NewKeyed()

	release := k.Acquire("a")
	release()

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.entries)
}
