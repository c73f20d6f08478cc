//go:build windows

package pacing

import "golang.org/x/sys/windows"

var (
	winmm               = windows.NewLazySystemDLL("winmm.dll")
	procTimeBeginPeriod = winmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = winmm.NewProc("timeEndPeriod")
)

// raiseTimerResolution requests 1 ms timer granularity for the spin sleeps.
// The returned func restores the previous resolution.
func raiseTimerResolution() func() {
	if err := procTimeBeginPeriod.Find(); err != nil {
		return func() {}
	}
	procTimeBeginPeriod.Call(1)
	return func() {
		procTimeEndPeriod.Call(1)
	}
}
