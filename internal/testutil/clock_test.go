package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_SleepAdvancesNow(t *testing.T) {
	clock := NewFakeClock()
	start := clock.Now()

	clock.Sleep(25 * time.Millisecond)
	clock.Sleep(5 * time.Millisecond)

	assert.Equal(t, 30*time.Millisecond, clock.Now().Sub(start))
	assert.Equal(t, []time.Duration{25 * time.Millisecond, 5 * time.Millisecond}, clock.Sleeps())
}

func TestFakeClock_AdvanceSimulatesEarlyWake(t *testing.T) {
	clock := NewFakeClock()
	clock.Advance = func(d time.Duration) time.Duration { return d / 2 }
	start := clock.Now()

	clock.Sleep(10 * time.Millisecond)

	assert.Equal(t, 5*time.Millisecond, clock.Now().Sub(start))
}

func TestFakeClock_OnSleepCountsCalls(t *testing.T) {
	clock := NewFakeClock()
	var calls []int
	clock.OnSleep = func(n int) { calls = append(calls, n) }

	clock.Sleep(time.Millisecond)
	clock.Sleep(time.Millisecond)

	assert.Equal(t, []int{1, 2}, calls)
}

func TestFakeClock_Reset(t *testing.T) {
	clock := NewFakeClock()
	clock.Sleep(time.Second)
	before := clock.Now()

	clock.Reset()

	assert.Empty(t, clock.Sleeps())
	assert.Equal(t, before, clock.Now())
}

func TestFakeClock_ThreadSafe(t *testing.T) {
	clock := NewFakeClock()
	start := clock.Now()
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Len(t, clock.Sleeps(), numGoroutines)
	assert.Equal(t, numGoroutines*time.Millisecond, clock.Now().Sub(start))
}
