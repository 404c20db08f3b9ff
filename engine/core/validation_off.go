//go:build !validation

package core

// ValidationEnabled is set by building with -tags validation.
const ValidationEnabled = false
