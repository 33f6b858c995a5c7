package keylock

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	kl := New()

	const workers = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("person:alice")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter=%d, want %d", counter, workers)
	}
}

func TestLockDistinctKeysDoNotBlock(t *testing.T) {
	kl := New()
	unlockA := kl.Lock("person:alice")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := kl.Lock("person:bob")
		unlockB()
		close(done)
	}()
	<-done
}

func TestLockEntryFreedAfterLastRelease(t *testing.T) {
	kl := New()
	unlock := kl.Lock("city:paris")
	unlock()

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if len(kl.locks) != 0 {
		t.Fatalf("expected empty lock table, have %d entries", len(kl.locks))
	}
}
