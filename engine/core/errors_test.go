package core_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	pkgerrors "github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

func TestDriverCall(t *testing.T) {
	c := qt.New(t)

	c.Assert(core.DriverCall("vkCreateImage", nil), qt.IsNil)

	cause := errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY")
	err := core.DriverCall("vkAllocateMemory", cause)
	c.Assert(err, qt.ErrorMatches, "vkAllocateMemory failed: VK_ERROR_OUT_OF_DEVICE_MEMORY")
	c.Assert(err, qt.ErrorIs, core.ErrDriverCallFailed)
	c.Assert(err, qt.ErrorIs, cause)

	// still recognisable once wrapped with context
	wrapped := pkgerrors.Wrap(err, "create LinearImage")
	var dce *core.DriverCallError
	c.Assert(errors.As(wrapped, &dce), qt.IsTrue)
	c.Assert(dce.Call, qt.Equals, "vkAllocateMemory")
	c.Assert(wrapped, qt.ErrorIs, core.ErrDriverCallFailed)
}

func TestSentinelsAreDistinct(t *testing.T) {
	c := qt.New(t)

	sentinels := []error{
		core.ErrDriverCallFailed,
		core.ErrLayerUnsupported,
		core.ErrNoSuitableMemoryType,
		core.ErrNoGraphicsQueue,
		core.ErrExtentMismatch,
		core.ErrInvalidState,
		core.ErrDependentsAlive,
		core.ErrAlreadyDestroyed,
		core.ErrParentDestroyed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			c.Assert(errors.Is(a, b), qt.Equals, i == j, qt.Commentf("%v vs %v", a, b))
		}
	}
}
