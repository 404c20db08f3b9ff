package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// tree is shared by every Lifetime descending from the same root.
type tree struct {
	mu   sync.Mutex
	live map[uuid.UUID]*Lifetime
}

// Lifetime is a node in an ownership tree. A node may only be released once
// every dependent registered against it has been released; dependents are
// children created from it and siblings that reference it. Implicit children
// do not block their owner: they are released together with it.
type Lifetime struct {
	tree *tree

	id       uuid.UUID
	kind     string
	owner    *Lifetime
	refs     []*Lifetime
	implicit bool
	released bool

	dependents map[*Lifetime]struct{}
}

// NewRootLifetime starts a new ownership tree.
func NewRootLifetime(kind string) *Lifetime {
	t := &tree{live: make(map[uuid.UUID]*Lifetime)}
	root := newLifetime(t, kind, nil, nil, false)
	t.live[root.id] = root
	return root
}

func newLifetime(t *tree, kind string, owner *Lifetime, refs []*Lifetime, implicit bool) *Lifetime {
	return &Lifetime{
		tree:       t,
		id:         uuid.New(),
		kind:       kind,
		owner:      owner,
		refs:       refs,
		implicit:   implicit,
		dependents: make(map[*Lifetime]struct{}),
	}
}

func (l *Lifetime) ID() uuid.UUID { return l.id }

func (l *Lifetime) Kind() string { return l.kind }

func (l *Lifetime) String() string {
	return fmt.Sprintf("%s(%s)", l.kind, l.id)
}

// NewChild registers a child owned by l that also depends on refs. The child
// blocks the release of l and of every ref until it is released itself.
func (l *Lifetime) NewChild(kind string, refs ...*Lifetime) (*Lifetime, error) {
	return l.newChild(kind, refs, false)
}

// NewImplicitChild registers a child that is released together with l.
func (l *Lifetime) NewImplicitChild(kind string) (*Lifetime, error) {
	return l.newChild(kind, nil, true)
}

func (l *Lifetime) newChild(kind string, refs []*Lifetime, implicit bool) (*Lifetime, error) {
	l.tree.mu.Lock()
	defer l.tree.mu.Unlock()

	if err := l.checkLocked(); err != nil {
		return nil, errors.Wrapf(err, "creating %s from %s", kind, l.kind)
	}
	for _, ref := range refs {
		if ref.tree != l.tree {
			return nil, errors.Errorf("creating %s: %s belongs to a different instance", kind, ref.kind)
		}
		if err := ref.checkLocked(); err != nil {
			return nil, errors.Wrapf(err, "creating %s referencing %s", kind, ref.kind)
		}
	}

	child := newLifetime(l.tree, kind, l, refs, implicit)
	l.dependents[child] = struct{}{}
	for _, ref := range refs {
		ref.dependents[child] = struct{}{}
	}
	l.tree.live[child.id] = child
	return child, nil
}

// Check reports whether l and everything it was created from or references
// are still alive.
func (l *Lifetime) Check() error {
	l.tree.mu.Lock()
	defer l.tree.mu.Unlock()
	return l.checkLocked()
}

func (l *Lifetime) checkLocked() error {
	for p := l.owner; p != nil; p = p.owner {
		if p.released {
			return errors.Wrapf(ErrParentDestroyed, "%s owned by destroyed %s", l.kind, p.kind)
		}
	}
	for _, ref := range l.refs {
		if ref.released {
			return errors.Wrapf(ErrParentDestroyed, "%s references destroyed %s", l.kind, ref.kind)
		}
	}
	if l.released {
		return errors.Wrapf(ErrAlreadyDestroyed, "%s", l.kind)
	}
	return nil
}

// Alive reports whether l has not been released.
func (l *Lifetime) Alive() bool {
	l.tree.mu.Lock()
	defer l.tree.mu.Unlock()
	return !l.released
}

// CanRelease returns nil when Release would succeed. It does not change state,
// so callers can check before tearing down the native object.
func (l *Lifetime) CanRelease() error {
	l.tree.mu.Lock()
	defer l.tree.mu.Unlock()
	return l.canReleaseLocked()
}

func (l *Lifetime) canReleaseLocked() error {
	if l.released {
		return errors.Wrapf(ErrAlreadyDestroyed, "%s", l.kind)
	}
	var blocking []string
	for d := range l.dependents {
		if !d.implicit {
			blocking = append(blocking, d.String())
		}
	}
	if len(blocking) > 0 {
		sort.Strings(blocking)
		return errors.Wrapf(ErrDependentsAlive, "%s is still required by %s", l.kind, strings.Join(blocking, ", "))
	}
	return nil
}

// Release marks l as destroyed, together with its implicit children.
func (l *Lifetime) Release() error {
	return l.ReleaseFunc(nil)
}

// ReleaseFunc runs destroy and marks l as destroyed, but only when l, its
// owners and its references are alive and nothing depends on l anymore.
// Otherwise destroy is not called.
func (l *Lifetime) ReleaseFunc(destroy func()) error {
	l.tree.mu.Lock()
	defer l.tree.mu.Unlock()

	if err := l.checkLocked(); err != nil {
		return err
	}
	if err := l.canReleaseLocked(); err != nil {
		return err
	}
	if destroy != nil {
		destroy()
	}
	l.releaseLocked()
	return nil
}

func (l *Lifetime) releaseLocked() {
	for d := range l.dependents {
		// only implicit children remain here
		d.releaseLocked()
	}
	l.released = true
	delete(l.tree.live, l.id)
	if l.owner != nil {
		delete(l.owner.dependents, l)
	}
	for _, ref := range l.refs {
		delete(ref.dependents, l)
	}
}

// Live lists every unreleased node of the tree l belongs to, sorted.
func (l *Lifetime) Live() []string {
	l.tree.mu.Lock()
	defer l.tree.mu.Unlock()

	out := make([]string, 0, len(l.tree.live))
	for _, n := range l.tree.live {
		out = append(out, n.String())
	}
	sort.Strings(out)
	return out
}
