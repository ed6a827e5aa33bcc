package metrics

import (
	"fmt"
	"math"
)

// FID computes the Fréchet Inception Distance between two feature sets:
//
//	FID = |mu_r - mu_f|² + Tr(C_r + C_f - 2*sqrt(C_r C_f))
//
// The covariance square-root trace is evaluated through the Gram trick:
// the nonzero eigenvalues of C_r C_f equal those of the small matrix
// (Aᵀ B)(Bᵀ A) / ((n_r-1)(n_f-1)) with A, B the centered feature
// matrices, so only an n_r × n_r symmetric eigenproblem is solved
// instead of one over the full feature dimension.
//
// Both sets need at least two samples.
func FID(real, fake [][]float64) float64 {
	if len(real) < 2 || len(fake) < 2 {
		panic(fmt.Sprintf("fid: need at least 2 samples per set, got %d real and %d fake", len(real), len(fake)))
	}
	dim := len(real[0])

	muR := meanVector(real)
	muF := meanVector(fake)

	var meanDist float64
	for i := 0; i < dim; i++ {
		d := muR[i] - muF[i]
		meanDist += d * d
	}

	a := centered(real, muR) // [nR][dim]
	b := centered(fake, muF) // [nF][dim]
	nR, nF := float64(len(a)-1), float64(len(b)-1)

	traceR := traceCovariance(a, nR)
	traceF := traceCovariance(b, nF)

	// cross[i][j] = a_i · b_j
	cross := make([][]float64, len(a))
	for i := range a {
		cross[i] = make([]float64, len(b))
		for j := range b {
			var dot float64
			for k := 0; k < dim; k++ {
				dot += a[i][k] * b[j][k]
			}
			cross[i][j] = dot
		}
	}

	// m = cross × crossᵀ / (nR * nF), symmetric PSD of size len(a).
	m := make([][]float64, len(a))
	for i := range m {
		m[i] = make([]float64, len(a))
		for j := 0; j <= i; j++ {
			var dot float64
			for k := range cross[i] {
				dot += cross[i][k] * cross[j][k]
			}
			v := dot / (nR * nF)
			m[i][j] = v
			m[j][i] = v
		}
	}

	var traceSqrt float64
	for _, ev := range symmetricEigenvalues(m) {
		if ev > 0 {
			traceSqrt += math.Sqrt(ev)
		}
	}

	return meanDist + traceR + traceF - 2*traceSqrt
}

func meanVector(features [][]float64) []float64 {
	dim := len(features[0])
	mu := make([]float64, dim)
	for _, f := range features {
		for i, v := range f {
			mu[i] += v
		}
	}
	for i := range mu {
		mu[i] /= float64(len(features))
	}
	return mu
}

func centered(features [][]float64, mu []float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, f := range features {
		row := make([]float64, len(f))
		for j, v := range f {
			row[j] = v - mu[j]
		}
		out[i] = row
	}
	return out
}

func traceCovariance(centered [][]float64, denom float64) float64 {
	var trace float64
	for _, row := range centered {
		for _, v := range row {
			trace += v * v
		}
	}
	return trace / denom
}

// symmetricEigenvalues computes the eigenvalues of a small symmetric
// matrix with the cyclic Jacobi rotation method.
func symmetricEigenvalues(m [][]float64) []float64 {
	n := len(m)
	a := make([][]float64, n)
	for i := range a {
		a[i] = append([]float64(nil), m[i]...)
	}

	const maxSweeps = 100

	// Convergence threshold relative to the matrix magnitude.
	var total float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			total += a[i][j] * a[i][j]
		}
	}
	tolerance := total * 1e-24
	if tolerance == 0 {
		return make([]float64, n)
	}

	for sweep := 0; sweep < maxSweeps; sweep++ {
		var offDiag float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				offDiag += a[i][j] * a[i][j]
			}
		}
		if offDiag < tolerance {
			break
		}

		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				if a[p][q] == 0 {
					continue
				}

				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				for k := 0; k < n; k++ {
					akp, akq := a[k][p], a[k][q]
					a[k][p] = c*akp - s*akq
					a[k][q] = s*akp + c*akq
				}
				for k := 0; k < n; k++ {
					apk, aqk := a[p][k], a[q][k]
					a[p][k] = c*apk - s*aqk
					a[q][k] = s*apk + c*aqk
				}
			}
		}
	}

	eigenvalues := make([]float64, n)
	for i := 0; i < n; i++ {
		eigenvalues[i] = a[i][i]
	}
	return eigenvalues
}
