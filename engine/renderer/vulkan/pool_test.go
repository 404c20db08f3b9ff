package vulkan

import (
	"errors"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSafeCallSerializesGroup(t *testing.T) {
	c := qt.New(t)

	pool := NewVulkanLockPool()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(MemoryManagement, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	c.Assert(counter, qt.Equals, 64)
}

func TestSafeCallReturnsError(t *testing.T) {
	c := qt.New(t)

	want := errors.New("boom")
	pool := NewVulkanLockPool()
	c.Assert(pool.SafeCall(ImageManagement, func() error { return want }), qt.Equals, want)
	// the lock was released
	c.Assert(pool.SafeCall(ImageManagement, func() error { return nil }), qt.IsNil)
}

func TestSafeQueueCallUnknownFamily(t *testing.T) {
	c := qt.New(t)

	pool := NewVulkanLockPool()
	pool.SetQueueFamily(0)

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeQueueCall(3, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	c.Assert(counter, qt.Equals, 32)

	// different groups do not block each other
	err := pool.SafeQueueCall(0, func() error {
		return pool.SafeQueueCall(3, func() error {
			return pool.SafeCall(CommandPoolManagement, func() error { return nil })
		})
	})
	c.Assert(err, qt.IsNil)
}
