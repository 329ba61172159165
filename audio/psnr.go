package audio

import "math"

// CalculatePSNR returns the peak signal-to-noise ratio, in dB, between the
// original carrier body and its modified counterpart, treating both as raw
// byte streams. Identical inputs yield +Inf. Length-mismatched or empty
// input yields 0, since the comparison is meaningless.
func CalculatePSNR(original, modified []byte) float64 {
	if len(original) != len(modified) || len(original) == 0 {
		return 0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(modified[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX / sqrt(MSE)); per-byte comparison, so MAX = 255.
	return 20 * math.Log10(255/math.Sqrt(mse))
}

// AcceptablePSNR reports whether psnr meets threshold. +Inf always passes.
func AcceptablePSNR(psnr, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}
