package hwcaps

// Feature names one CPU capability flag. The names follow the kernel's
// /proc/cpuinfo vocabulary where one exists.
type Feature string

const (
	FeatureFPU    Feature = "fpu"
	FeatureCX8    Feature = "cx8"
	FeatureMMX    Feature = "mmx"
	FeatureSEP    Feature = "sep"
	FeatureCMOV   Feature = "cmov"
	FeatureFXSR   Feature = "fxsr"
	FeatureSSE    Feature = "sse"
	FeatureSSE2   Feature = "sse2"
	FeatureSSE3   Feature = "sse3"
	FeatureSSSE3  Feature = "ssse3"
	FeatureCX16   Feature = "cx16"
	FeatureSSE41  Feature = "sse4_1"
	FeatureSSE42  Feature = "sse4_2"
	FeaturePOPCNT Feature = "popcnt"
	FeatureLAHF   Feature = "lahf_lm"
	FeatureFMA    Feature = "fma"
	FeatureMOVBE  Feature = "movbe"
	FeatureXSAVE  Feature = "osxsave"
	FeatureAVX    Feature = "avx"
	FeatureF16C   Feature = "f16c"
	FeatureLZCNT  Feature = "abm"
	FeatureBMI1   Feature = "bmi1"
	FeatureAVX2   Feature = "avx2"
	FeatureBMI2   Feature = "bmi2"

	FeatureAVX512F  Feature = "avx512f"
	FeatureAVX512DQ Feature = "avx512dq"
	FeatureAVX512CD Feature = "avx512cd"
	FeatureAVX512BW Feature = "avx512bw"
	FeatureAVX512VL Feature = "avx512vl"
)

// tierIncrements lists the flags each tier requires beyond its
// predecessor. Requirements are cumulative: satisfying v3 implies
// satisfying every flag of v2 and below. i386 is the empty baseline,
// which is why detection can never yield "none".
var tierIncrements = [tierCount][]Feature{
	TierI386: {},
	TierI486: {FeatureFPU},
	TierI586: {FeatureCX8, FeatureMMX},
	TierI686: {FeatureSEP, FeatureCMOV, FeatureFXSR},
	TierX8664v1: {FeatureSSE, FeatureSSE2},
	TierX8664v2: {
		FeatureSSE3, FeatureSSSE3, FeatureCX16, FeatureSSE41,
		FeatureSSE42, FeaturePOPCNT, FeatureLAHF,
	},
	TierX8664v3: {
		FeatureFMA, FeatureMOVBE, FeatureXSAVE, FeatureAVX,
		FeatureF16C, FeatureLZCNT, FeatureBMI1, FeatureAVX2, FeatureBMI2,
	},
	TierX8664v4: {
		FeatureAVX512F, FeatureAVX512DQ, FeatureAVX512CD,
		FeatureAVX512BW, FeatureAVX512VL,
	},
}

// Requirements returns the full cumulative flag set for a tier.
func Requirements(t Tier) []Feature {
	if !t.Valid() {
		return nil
	}
	var features []Feature
	for cur := Lowest(); cur <= t; cur++ {
		features = append(features, tierIncrements[cur]...)
	}
	return features
}
