// Package kernel provides the shared domain primitives of the flower-stand
// service: identifiers and the authenticated actor that every command carries.
//
// Values in this package are immutable and must be built through their
// constructors; the zero value of each type fails Validate.
package kernel
