// Package assert provides fail-fast precondition checks for the real-time
// processing path.
//
// Checks are only active when building with the 'debug' build tag:
//
//	go test -tags debug ./...
//
// Without the tag every check compiles to a no-op, and callers are expected
// to clamp their inputs into a safe range instead of failing.
package assert
