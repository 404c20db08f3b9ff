package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDriverCallFailed matches every DriverCallError.
	ErrDriverCallFailed = errors.New("driver call failed")
	// ErrLayerUnsupported is returned when a requested validation layer is not
	// enumerated by the driver.
	ErrLayerUnsupported = errors.New("validation layer unsupported")
	// ErrNoSuitableMemoryType is returned when no memory type satisfies both the
	// resource's type bits and the required property flags.
	ErrNoSuitableMemoryType = errors.New("no suitable memory type")
	// ErrNoGraphicsQueue is returned when a physical device exposes no queue
	// family with the graphics capability.
	ErrNoGraphicsQueue = errors.New("no graphics-capable queue family")
	// ErrExtentMismatch is returned when a framebuffer extent differs from the
	// extent of the image bound to it.
	ErrExtentMismatch = errors.New("framebuffer extent does not match image extent")

	// ErrInvalidState is returned when a command buffer operation does not
	// match the buffer's recording state.
	ErrInvalidState = errors.New("invalid command buffer state")

	ErrDependentsAlive  = errors.New("object still has live dependents")
	ErrAlreadyDestroyed = errors.New("object already destroyed")
	ErrParentDestroyed  = errors.New("parent or referenced object already destroyed")
)

// DriverCallError wraps a non-success status returned by a native call.
type DriverCallError struct {
	// Call is the native entry point, e.g. "vkCreateImage".
	Call string
	Err  error
}

func (e *DriverCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Call, e.Err)
}

func (e *DriverCallError) Unwrap() error {
	return e.Err
}

func (e *DriverCallError) Is(target error) bool {
	return target == ErrDriverCallFailed
}

// DriverCall returns nil when err is nil, otherwise a *DriverCallError for call.
func DriverCall(call string, err error) error {
	if err == nil {
		return nil
	}
	return &DriverCallError{Call: call, Err: err}
}
