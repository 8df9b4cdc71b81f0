// Package delay provides circular sample storage for block-based delay
// effects.
//
// A [Ring] holds one fixed-length lane per channel. Callers own the cursor
// arithmetic and move whole blocks in and out of the ring; a block that runs
// past the end of a lane is split into two contiguous copies, the second one
// starting at index 0.
package delay
