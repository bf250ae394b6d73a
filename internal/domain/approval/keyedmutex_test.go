//go:build unit

package approval_test

import (
	"sync"
	"testing"

	"casita-reservations/internal/domain/approval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexExclusion(t *testing.T) {
	km := approval.NewKeyedMutex()
	key := uuid.New()

	const workers = 16
	const rounds = 100

	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				unlock := km.Lock(key)
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*rounds, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := approval.NewKeyedMutex()
	a, b := uuid.New(), uuid.New()

	unlockA := km.Lock(a)

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock(b)
		unlockB()
		close(done)
	}()

	// b must not wait on a
	<-done
	unlockA()
}
