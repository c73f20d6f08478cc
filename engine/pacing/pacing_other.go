//go:build !windows

package pacing

func raiseTimerResolution() func() {
	return func() {}
}
