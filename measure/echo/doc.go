// Package echo estimates the delay and gain of an additive echo.
//
// Given the dry signal fed into an effect and the wet signal it produced, the
// detector subtracts the dry part and finds the lag at which the remainder
// best matches the dry input. Cross-correlation runs in the frequency domain.
//
// # Usage
//
//	d := echo.NewDetector(48000)
//	est, err := d.Detect(dry, wet)
//	fmt.Printf("echo after %.3f s at gain %.2f\n", est.Seconds, est.Gain)
package echo
