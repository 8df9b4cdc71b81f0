//go:build !debug

package assert

// Enabled reports whether checks panic.
const Enabled = false

// That is a no-op when not in debug mode.
func That(cond bool, msg string) {}

// Thatf is a no-op when not in debug mode.
func Thatf(cond bool, format string, args ...any) {}
