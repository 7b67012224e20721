// Package guard holds the constructor guard embedded by commands, queries and
// value objects that must only be built through their New… functions.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard distinguishes values built by a constructor from zero values.
//
// Example:
//
//	type CancelProjectCommand struct {
//	    projectID kernel.UUID
//	    guard     guard.ConstructorGuard
//	}
//
//	func (c CancelProjectCommand) Validate() error {
//	    return c.guard.Validate(ErrCancelProjectCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
