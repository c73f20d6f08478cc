package device

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// BenignBarrierMismatch identifies the resource barrier / command list type mismatch message,
// which is reported for valid usage and is always dropped.
const BenignBarrierMismatch = "RESOURCE_BARRIER_MISMATCHING_COMMAND_LIST_TYPE"

// DebugFilter decides which native validation messages reach the logger.
type DebugFilter struct {
	// DenyIDs drops any message containing one of these identifiers.
	DenyIDs []string
	// DenyInfo drops info and trace severity messages.
	DenyInfo bool
}

// DefaultDebugFilter drops the benign barrier mismatch and all info severity messages.
func DefaultDebugFilter() DebugFilter {
	return DebugFilter{
		DenyIDs:  []string{BenignBarrierMismatch},
		DenyInfo: true,
	}
}

// Allow reports whether a message at the given level should be logged.
//
// Parameters:
//   - level: the native log level
//   - msg: the message text
//
// Returns:
//   - bool: false if the filter drops the message
func (f DebugFilter) Allow(level wgpu.LogLevel, msg string) bool {
	if f.DenyInfo && (level == wgpu.LogLevelInfo || level == wgpu.LogLevelDebug || level == wgpu.LogLevelTrace) {
		return false
	}
	for _, id := range f.DenyIDs {
		if strings.Contains(msg, id) {
			return false
		}
	}
	return true
}

// slogLevel maps a native log level to a structured logging level.
// Error messages are the corruption/error break severities and log at Error.
func slogLevel(level wgpu.LogLevel) slog.Level {
	switch level {
	case wgpu.LogLevelError:
		return slog.LevelError
	case wgpu.LogLevelWarn:
		return slog.LevelWarn
	case wgpu.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// nativeLogLevel raises the native library's own stderr output when the debug layer is on.
func nativeLogLevel(debug bool) wgpu.LogLevel {
	if debug {
		return wgpu.LogLevelInfo
	}
	return wgpu.LogLevelWarn
}

// checkNative passes the error of a native call through the filter. Messages the filter drops
// are logged at Debug and nil is returned. Others are logged at Error when report is set and
// returned unchanged.
func checkNative(filter DebugFilter, report bool, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !filter.Allow(wgpu.LogLevelError, msg) {
		logger.Logger().Debug("native message filtered", "message", msg)
		return nil
	}
	if report {
		logger.Logger().Log(context.Background(), slogLevel(wgpu.LogLevelError), msg, "source", "wgpu")
	}
	return err
}

// deviceLostCallback logs loss of the device. Destruction on Release is expected and logs at
// Debug.
func deviceLostCallback(filter DebugFilter) wgpu.DeviceLostCallback {
	return func(reason wgpu.DeviceLostReason, message string) {
		if reason == wgpu.DeviceLostReasonDestroyed {
			logger.Logger().Debug("device destroyed", "message", message)
			return
		}
		if !filter.Allow(wgpu.LogLevelError, message) {
			return
		}
		logger.Logger().Error("device lost", "reason", reason.String(), "message", message)
	}
}
