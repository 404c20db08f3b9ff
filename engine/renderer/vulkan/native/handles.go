package native

import (
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
)

// nextHandle is shared by every table so a token never names two objects.
var nextHandle atomic.Uint64

// handleTable maps opaque tokens to native handles of one type.
type handleTable[T comparable] struct {
	mu sync.RWMutex
	m  map[vulkan.Handle]T
}

func newHandleTable[T comparable]() *handleTable[T] {
	return &handleTable[T]{m: make(map[vulkan.Handle]T)}
}

func (t *handleTable[T]) put(v T) vulkan.Handle {
	h := vulkan.Handle(nextHandle.Add(1))
	t.mu.Lock()
	t.m[h] = v
	t.mu.Unlock()
	return h
}

// intern returns the existing token for v, or a new one.
func (t *handleTable[T]) intern(v T) vulkan.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	for h, existing := range t.m {
		if existing == v {
			return h
		}
	}
	h := vulkan.Handle(nextHandle.Add(1))
	t.m[h] = v
	return h
}

func (t *handleTable[T]) get(h vulkan.Handle) T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.m[h]
}

// take removes h and returns what it named.
func (t *handleTable[T]) take(h vulkan.Handle) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := t.m[h]
	delete(t.m, h)
	return v
}
