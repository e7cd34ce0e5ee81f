package hwcaps

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// FeatureSet answers whether the host supports a single capability
// flag. Detection is written against this interface so tests can inject
// a fake flag set instead of querying real hardware.
type FeatureSet interface {
	Has(f Feature) bool
}

// Satisfies reports whether fs meets the full cumulative requirement
// set of tier t.
func Satisfies(fs FeatureSet, t Tier) bool {
	for _, f := range Requirements(t) {
		if !fs.Has(f) {
			return false
		}
	}
	return true
}

// Detect reduces a capability set to the single highest tier whose full
// flag requirement set is satisfied. It cannot fail: the lowest tier
// has an empty requirement set and is always reachable.
func Detect(fs FeatureSet) Tier {
	for t := range TiersFrom(Highest()) {
		if Satisfies(fs, t) {
			return t
		}
	}
	return Lowest()
}

// DetectHost detects the tier of the running machine.
func DetectHost() Tier {
	return Detect(HostFeatureSet())
}

// HostFeatureSet returns the live CPU's capability set, queried via
// CPUID. On anything outside the x86 family every flag reads as
// unsupported, so detection degrades to the lowest tier instead of
// guessing.
func HostFeatureSet() FeatureSet {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" {
		return MapFeatureSet(nil)
	}
	return hostFeatureSet{}
}

// cpuidFeatures maps capability flags onto CPUID feature identifiers.
// FeatureFPU is absent: an x87 unit is a given on every x86 CPU a Go
// binary can reach, so it is reported directly by hostFeatureSet.
var cpuidFeatures = map[Feature]cpuid.FeatureID{
	FeatureCX8:      cpuid.CMPXCHG8,
	FeatureMMX:      cpuid.MMX,
	FeatureSEP:      cpuid.SYSEE,
	FeatureCMOV:     cpuid.CMOV,
	FeatureFXSR:     cpuid.FXSR,
	FeatureSSE:      cpuid.SSE,
	FeatureSSE2:     cpuid.SSE2,
	FeatureSSE3:     cpuid.SSE3,
	FeatureSSSE3:    cpuid.SSSE3,
	FeatureCX16:     cpuid.CX16,
	FeatureSSE41:    cpuid.SSE4,
	FeatureSSE42:    cpuid.SSE42,
	FeaturePOPCNT:   cpuid.POPCNT,
	FeatureLAHF:     cpuid.LAHF,
	FeatureFMA:      cpuid.FMA3,
	FeatureMOVBE:    cpuid.MOVBE,
	FeatureXSAVE:    cpuid.OSXSAVE,
	FeatureAVX:      cpuid.AVX,
	FeatureF16C:     cpuid.F16C,
	FeatureLZCNT:    cpuid.LZCNT,
	FeatureBMI1:     cpuid.BMI1,
	FeatureAVX2:     cpuid.AVX2,
	FeatureBMI2:     cpuid.BMI2,
	FeatureAVX512F:  cpuid.AVX512F,
	FeatureAVX512DQ: cpuid.AVX512DQ,
	FeatureAVX512CD: cpuid.AVX512CD,
	FeatureAVX512BW: cpuid.AVX512BW,
	FeatureAVX512VL: cpuid.AVX512VL,
}

type hostFeatureSet struct{}

func (hostFeatureSet) Has(f Feature) bool {
	if f == FeatureFPU {
		return true
	}
	id, ok := cpuidFeatures[f]
	if !ok {
		return false
	}
	return cpuid.CPU.Supports(id)
}

// MapFeatureSet adapts a plain flag map to the FeatureSet interface.
// Used by tests and by callers that source flags from elsewhere, such
// as a parsed /proc/cpuinfo line.
type MapFeatureSet map[Feature]bool

// Has implements FeatureSet.
func (m MapFeatureSet) Has(f Feature) bool { return m[f] }

// TierFeatureSet returns a synthetic capability set that satisfies
// exactly the given tier and nothing above it.
func TierFeatureSet(t Tier) FeatureSet {
	m := make(MapFeatureSet)
	for _, f := range Requirements(t) {
		m[f] = true
	}
	return m
}
