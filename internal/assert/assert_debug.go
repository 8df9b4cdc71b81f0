//go:build debug

package assert

import "fmt"

// Enabled reports whether checks panic.
const Enabled = true

// That panics with msg when cond is false.
func That(cond bool, msg string) {
	if !cond {
		panic("assert: " + msg)
	}
}

// Thatf panics with a formatted message when cond is false.
func Thatf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
