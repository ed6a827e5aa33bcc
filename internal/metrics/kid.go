package metrics

import "fmt"

// KID computes the Kernel Inception Distance between two feature sets:
// the unbiased estimate of the squared maximum mean discrepancy under
// the cubic polynomial kernel
//
//	k(x, y) = (x·y/d + 1)³
//
// with d the feature dimension. Unlike FID, the estimator is unbiased
// and behaves well for small sample counts. Both sets need at least two
// samples.
func KID(real, fake [][]float64) float64 {
	m, n := len(real), len(fake)
	if m < 2 || n < 2 {
		panic(fmt.Sprintf("kid: need at least 2 samples per set, got %d real and %d fake", m, n))
	}

	var kxx float64
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i == j {
				continue
			}
			kxx += polyKernel(real[i], real[j])
		}
	}
	kxx /= float64(m * (m - 1))

	var kyy float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			kyy += polyKernel(fake[i], fake[j])
		}
	}
	kyy /= float64(n * (n - 1))

	var kxy float64
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			kxy += polyKernel(real[i], fake[j])
		}
	}
	kxy /= float64(m * n)

	return kxx + kyy - 2*kxy
}

func polyKernel(x, y []float64) float64 {
	var dot float64
	for i := range x {
		dot += x[i] * y[i]
	}
	v := dot/float64(len(x)) + 1
	return v * v * v
}
