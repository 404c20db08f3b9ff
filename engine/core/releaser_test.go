package core_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/core"
)

type recorder struct {
	name string
	log  *[]string
	err  error
}

func (r recorder) Destroy() error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestAutoReleaserOrder(t *testing.T) {
	c := qt.New(t)

	var log []string
	arp := core.NewAutoReleaser()
	for _, name := range []string{"instance", "device", "pool", "buffer"} {
		arp.Track(recorder{name: name, log: &log})
	}
	c.Assert(arp.Len(), qt.Equals, 4)

	c.Assert(arp.Release(), qt.IsNil)
	c.Assert(log, qt.DeepEquals, []string{"buffer", "pool", "device", "instance"})
	c.Assert(arp.Len(), qt.Equals, 0)

	// a second release is a no-op
	c.Assert(arp.Release(), qt.IsNil)
	c.Assert(log, qt.HasLen, 4)
}

func TestAutoReleaserContinuesPastFailures(t *testing.T) {
	c := qt.New(t)

	errA := errors.New("a failed")
	errC := errors.New("c failed")

	var log []string
	arp := core.NewAutoReleaser()
	arp.Track(recorder{name: "a", log: &log, err: errA})
	arp.Track(recorder{name: "b", log: &log})
	arp.Track(recorder{name: "c", log: &log, err: errC})

	err := arp.Release()
	c.Assert(err, qt.ErrorIs, errA)
	c.Assert(err, qt.ErrorIs, errC)
	c.Assert(log, qt.DeepEquals, []string{"c", "b", "a"})
}

func TestAutoReleaserWithLifetimes(t *testing.T) {
	c := qt.New(t)

	root := core.NewRootLifetime("Instance")
	child, err := root.NewChild("LogicalDevice")
	c.Assert(err, qt.IsNil)

	arp := core.NewAutoReleaser()
	arp.Track(lifetimeDestroyer{root})
	arp.Track(lifetimeDestroyer{child})

	c.Assert(arp.Release(), qt.IsNil)
	c.Assert(root.Alive(), qt.IsFalse)
	c.Assert(child.Alive(), qt.IsFalse)
}

type lifetimeDestroyer struct {
	*core.Lifetime
}

func (l lifetimeDestroyer) Destroy() error {
	return l.Release()
}
