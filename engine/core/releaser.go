package core

import (
	"errors"
	"sync"
)

// Destroyer is implemented by every managed object.
type Destroyer interface {
	Destroy() error
}

// AutoReleaser destroys the objects tracked on it in reverse order of
// tracking. Pair it with defer so release happens on every exit path:
//
//	arp := core.NewAutoReleaser()
//	defer arp.Release()
type AutoReleaser struct {
	mu    sync.Mutex
	stack []Destroyer
}

func NewAutoReleaser() *AutoReleaser {
	return &AutoReleaser{}
}

// Track pushes d and returns it.
func (a *AutoReleaser) Track(d Destroyer) Destroyer {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stack = append(a.stack, d)
	return d
}

// Len is the number of objects still waiting to be released.
func (a *AutoReleaser) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.stack)
}

// Release destroys every tracked object, last tracked first. A failing
// Destroy does not stop the remaining ones; all failures are joined.
func (a *AutoReleaser) Release() error {
	a.mu.Lock()
	stack := a.stack
	a.stack = nil
	a.mu.Unlock()

	var errs []error
	for i := len(stack) - 1; i >= 0; i-- {
		if err := stack[i].Destroy(); err != nil {
			LogError("release failed: %s", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
