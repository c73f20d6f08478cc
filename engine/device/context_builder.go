package device

// ContextBuilderOption configures a device context during NewContext.
type ContextBuilderOption func(*deviceContext)

// WithLabel sets the device label shown in native validation messages.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - ContextBuilderOption: a function that applies the label
func WithLabel(label string) ContextBuilderOption {
	return func(c *deviceContext) {
		c.label = label
	}
}

// WithDebug enables native validation logging routed to the structured logger.
//
// Parameters:
//   - enabled: true to enable validation logging
//
// Returns:
//   - ContextBuilderOption: a function that applies the debug setting
func WithDebug(enabled bool) ContextBuilderOption {
	return func(c *deviceContext) {
		c.debug = enabled
	}
}

// WithDebugFilter replaces the default validation message filter. Only used with WithDebug.
//
// Parameters:
//   - filter: the filter to apply to validation messages
//
// Returns:
//   - ContextBuilderOption: a function that applies the filter
func WithDebugFilter(filter DebugFilter) ContextBuilderOption {
	return func(c *deviceContext) {
		c.debugFilter = filter
	}
}

// WithForceFallbackAdapter requests the software fallback adapter instead of enumerating hardware.
//
// Parameters:
//   - force: true to use the fallback adapter
//
// Returns:
//   - ContextBuilderOption: a function that applies the setting
func WithForceFallbackAdapter(force bool) ContextBuilderOption {
	return func(c *deviceContext) {
		c.forceFallback = force
	}
}

// WithFeatureLevels overrides the feature levels tried, highest first.
// An empty list leaves DefaultFeatureLevels in place.
//
// Parameters:
//   - levels: the levels to try in order
//
// Returns:
//   - ContextBuilderOption: a function that applies the levels
func WithFeatureLevels(levels ...FeatureLevel) ContextBuilderOption {
	return func(c *deviceContext) {
		if len(levels) > 0 {
			c.levels = levels
		}
	}
}
