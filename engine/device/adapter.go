package device

import (
	"errors"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoAdapter is returned when no hardware adapter is available.
var ErrNoAdapter = errors.New("no hardware adapter available")

// AdapterCandidate is an enumerated adapter with the information used to rank it.
type AdapterCandidate struct {
	Index  int
	Info   wgpu.AdapterInfo
	Limits wgpu.Limits
}

// adapterRank orders adapter types, lowest first. Software adapters are not ranked.
func adapterRank(t wgpu.AdapterType) (int, bool) {
	switch t {
	case wgpu.AdapterTypeDiscreteGPU:
		return 0, true
	case wgpu.AdapterTypeIntegratedGPU:
		return 1, true
	case wgpu.AdapterTypeCPU:
		return 0, false
	default:
		return 2, true
	}
}

// RankAdapters orders candidates high-performance first and drops software adapters.
// Candidates of equal type keep their enumeration order.
//
// Parameters:
//   - candidates: the enumerated adapters
//
// Returns:
//   - []AdapterCandidate: the usable adapters, best first
func RankAdapters(candidates []AdapterCandidate) []AdapterCandidate {
	ranked := make([]AdapterCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := adapterRank(c.Info.AdapterType); ok {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, _ := adapterRank(ranked[i].Info.AdapterType)
		rj, _ := adapterRank(ranked[j].Info.AdapterType)
		return ri < rj
	})
	return ranked
}

// SelectAdapter returns the best candidate that supports at least one of the given levels.
//
// Parameters:
//   - candidates: the enumerated adapters
//   - levels: the feature levels the caller can use
//
// Returns:
//   - AdapterCandidate: the chosen adapter
//   - error: ErrNoAdapter if no hardware adapter supports any level
func SelectAdapter(candidates []AdapterCandidate, levels []FeatureLevel) (AdapterCandidate, error) {
	for _, c := range RankAdapters(candidates) {
		for _, level := range levels {
			if level.SupportedBy(c.Limits) {
				return c, nil
			}
		}
	}
	return AdapterCandidate{}, ErrNoAdapter
}
