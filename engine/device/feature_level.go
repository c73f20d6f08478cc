package device

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// FeatureLevel names a tier of device capabilities. Each level maps to a set of required limits
// requested from the adapter.
type FeatureLevel int

const (
	FeatureLevel11_0 FeatureLevel = iota
	FeatureLevel11_1
	FeatureLevel12_0
	FeatureLevel12_1
)

// DefaultFeatureLevels is the order levels are tried in, highest first.
var DefaultFeatureLevels = []FeatureLevel{
	FeatureLevel12_1,
	FeatureLevel12_0,
	FeatureLevel11_1,
	FeatureLevel11_0,
}

// ErrNoFeatureLevel is returned when the device could not be created at any requested level.
var ErrNoFeatureLevel = errors.New("no supported feature level")

func (l FeatureLevel) String() string {
	switch l {
	case FeatureLevel11_0:
		return "11_0"
	case FeatureLevel11_1:
		return "11_1"
	case FeatureLevel12_0:
		return "12_0"
	case FeatureLevel12_1:
		return "12_1"
	default:
		return fmt.Sprintf("FeatureLevel(%d)", int(l))
	}
}

// limitsTier lists the limits a level requires.
type limitsTier struct {
	maxTextureDimension2D            uint32
	maxBindGroups                    uint32
	maxSampledTexturesPerShaderStage uint32
	maxStorageBuffersPerShaderStage  uint32
	maxBufferSize                    uint64
}

var featureLevelTiers = map[FeatureLevel]limitsTier{
	FeatureLevel11_0: {
		maxTextureDimension2D:            8192,
		maxBindGroups:                    4,
		maxSampledTexturesPerShaderStage: 16,
		maxStorageBuffersPerShaderStage:  8,
		maxBufferSize:                    256 << 20,
	},
	FeatureLevel11_1: {
		maxTextureDimension2D:            16384,
		maxBindGroups:                    4,
		maxSampledTexturesPerShaderStage: 16,
		maxStorageBuffersPerShaderStage:  8,
		maxBufferSize:                    256 << 20,
	},
	FeatureLevel12_0: {
		maxTextureDimension2D:            16384,
		maxBindGroups:                    8,
		maxSampledTexturesPerShaderStage: 64,
		maxStorageBuffersPerShaderStage:  16,
		maxBufferSize:                    1 << 30,
	},
	FeatureLevel12_1: {
		maxTextureDimension2D:            16384,
		maxBindGroups:                    8,
		maxSampledTexturesPerShaderStage: 128,
		maxStorageBuffersPerShaderStage:  64,
		maxBufferSize:                    2 << 30,
	},
}

// Limits returns the limits requested when creating a device at this level.
//
// Parameters:
//   - base: the limits to start from, normally the adapter's supported limits
//
// Returns:
//   - wgpu.Limits: base with this level's tier applied
func (l FeatureLevel) Limits(base wgpu.Limits) wgpu.Limits {
	limits := base
	tier, ok := featureLevelTiers[l]
	if !ok {
		return limits
	}
	limits.MaxTextureDimension2D = tier.maxTextureDimension2D
	limits.MaxBindGroups = tier.maxBindGroups
	limits.MaxSampledTexturesPerShaderStage = tier.maxSampledTexturesPerShaderStage
	limits.MaxStorageBuffersPerShaderStage = tier.maxStorageBuffersPerShaderStage
	limits.MaxBufferSize = tier.maxBufferSize
	return limits
}

// SupportedBy reports whether an adapter with the given supported limits can serve this level.
//
// Parameters:
//   - supported: the adapter's supported limits
//
// Returns:
//   - bool: true if every raised limit is within the adapter's support
func (l FeatureLevel) SupportedBy(supported wgpu.Limits) bool {
	tier, ok := featureLevelTiers[l]
	if !ok {
		return false
	}
	return uint64(supported.MaxTextureDimension2D) >= uint64(tier.maxTextureDimension2D) &&
		uint64(supported.MaxBindGroups) >= uint64(tier.maxBindGroups) &&
		uint64(supported.MaxSampledTexturesPerShaderStage) >= uint64(tier.maxSampledTexturesPerShaderStage) &&
		uint64(supported.MaxStorageBuffersPerShaderStage) >= uint64(tier.maxStorageBuffersPerShaderStage) &&
		uint64(supported.MaxBufferSize) >= tier.maxBufferSize
}

// createAtHighestLevel calls create for each level in order until one succeeds.
// Levels the adapter does not support are skipped without calling create.
//
// Parameters:
//   - levels: the levels to try, highest first
//   - supported: the adapter's supported limits
//   - create: attempts device creation at a level
//
// Returns:
//   - FeatureLevel: the level that succeeded
//   - error: ErrNoFeatureLevel joined with every creation error if none succeeded
func createAtHighestLevel(levels []FeatureLevel, supported wgpu.Limits, create func(FeatureLevel) error) (FeatureLevel, error) {
	var errs []error
	for _, level := range levels {
		if !level.SupportedBy(supported) {
			continue
		}
		err := create(level)
		if err == nil {
			return level, nil
		}
		errs = append(errs, fmt.Errorf("feature level %s: %w", level, err))
	}
	return 0, errors.Join(append([]error{ErrNoFeatureLevel}, errs...)...)
}
