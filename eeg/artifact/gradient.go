package artifact

// GradientResult reports sample-to-sample transitions steeper than the
// threshold.
type GradientResult struct {
	HasArtifact        bool    `json:"has_artifact"`
	ArtifactPercentage float64 `json:"artifact_percentage"`
	ViolationCount     int     `json:"violation_count"`
	ViolationIndices   []int   `json:"violation_indices"`
	MaxGradient        float64 `json:"max_gradient"`
}

// Gradients returns the n-1 absolute differences between adjacent samples.
// Fewer than two samples yield an empty slice.
func Gradients(samples []float64) []float64 {
	if len(samples) < 2 {
		return []float64{}
	}
	out := make([]float64, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		g := samples[i] - samples[i-1]
		if g < 0 {
			g = -g
		}
		out[i-1] = g
	}
	return out
}

// IsGradientArtifact reports whether a single gradient value strictly
// exceeds the threshold in absolute value.
func IsGradientArtifact(gradient, threshold float64) bool {
	if gradient < 0 {
		gradient = -gradient
	}
	return gradient > threshold
}

// DetectGradient flags transitions whose absolute gradient strictly exceeds
// thresholdUVPerSample. A gradient exactly at the threshold is not a
// violation. ViolationIndices hold the index of the later sample of each
// violating pair. Fewer than two samples yield a zero result.
func DetectGradient(samples []float64, thresholdUVPerSample float64) GradientResult {
	res := GradientResult{ViolationIndices: []int{}}
	gradients := Gradients(samples)
	if len(gradients) == 0 {
		return res
	}

	for i, g := range gradients {
		if g > res.MaxGradient {
			res.MaxGradient = g
		}
		if g > thresholdUVPerSample {
			res.ViolationIndices = append(res.ViolationIndices, i+1)
		}
	}
	res.ViolationCount = len(res.ViolationIndices)
	res.HasArtifact = res.ViolationCount > 0
	res.ArtifactPercentage = float64(res.ViolationCount) * 100.0 / float64(len(gradients))
	return res
}
