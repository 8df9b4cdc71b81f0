// Package effects provides the block-based echo effect and its parameters.
//
// [DelayEngine] keeps one ring lane per channel. Every processing call writes
// the incoming block into the ring scaled by the feedback gain, then adds the
// block found delayTime seconds earlier back onto the caller's buffer. The dry
// signal is never attenuated; the wet echo is summed on top of it.
//
// The hot path neither allocates nor locks. The two user parameters live in
// [Params] as independently updated atomic scalars, so a control thread may
// change them while the audio thread is processing.
package effects
