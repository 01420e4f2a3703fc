package locate

import (
	"math"
	"strconv"
	"strings"
)

// Small dense-matrix helpers, adapted from the teacher's Mat/MatMul/Dot/
// Norm/LUDcmp/LUBksb/MatInv/Solve family in common.go. Column-major storage
// is kept (A[i+j*n]) so the teacher's index arithmetic carries over exactly.
// gonum.org/v1/gonum/mat is used for the decorrelator's symmetric
// eigendecomposition and the stepper's normal-matrix Cholesky solve (see
// decorrelator.go, stepper.go); Mat backs the stepper's column-major
// assembly and Norm its step length, and SolveSmall is the LU fallback
// solveNormalEquations uses when Cholesky rejects the normal matrix. The
// line search itself solves no linear system.

// Str2Num parses the n-byte fixed-width field starting at column i of a
// text record as a float64, tolerating Fortran-style 'd'/'D' exponents;
// out-of-range or unparsable fields return 0 rather than an error, matching
// the teacher's fixed-column RINEX field reader (common.go).
func Str2Num(s string, i, n int) float64 {
	if i < 0 || len(s) < i {
		return 0.0
	}
	if i+n > len(s) {
		s = s[i:]
	} else {
		s = s[i : i+n]
	}
	nr := strings.NewReplacer("d", "E", "D", "E")
	str := strings.TrimSpace(nr.Replace(s))
	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0.0
	}
	return value
}

// Str2Field parses the n-byte fixed-width field starting at column i as a
// trimmed string, for the non-numeric columns fixed-column record formats
// also carry (station codes, phase codes).
func Str2Field(s string, i, n int) string {
	if i < 0 || len(s) < i {
		return ""
	}
	if i+n > len(s) {
		s = s[i:]
	} else {
		s = s[i : i+n]
	}
	return strings.TrimSpace(s)
}

// Mat allocates an n*m float64 slice, column-major.
func Mat(n, m int) []float64 {
	if n <= 0 || m <= 0 {
		return nil
	}
	return make([]float64, n*m)
}

// Dot computes the inner product of the first n elements of a and b.
func Dot(a, b []float64, n int) float64 {
	c := 0.0
	for n--; n >= 0; n-- {
		c += a[n] * b[n]
	}
	return c
}

// Norm computes the Euclidean norm of the first n elements of a.
func Norm(a []float64, n int) float64 {
	return math.Sqrt(Dot(a, a, n))
}

// MatMul multiplies (possibly transposed) A (n x m) by B (m x k) into
// C (n x k): C = alpha*op(A)*op(B) + beta*C. tr is "NN", "NT", "TN" or "TT".
func MatMul(tr string, n, k, m int, alpha float64, A, B []float64, beta float64, C []float64) {
	var f int
	switch tr {
	case "NN":
		f = 1
	case "NT":
		f = 2
	case "TN":
		f = 3
	default:
		f = 4
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			d := 0.0
			switch f {
			case 1:
				for x := 0; x < m; x++ {
					d += A[i+x*n] * B[x+j*m]
				}
			case 2:
				for x := 0; x < m; x++ {
					d += A[i+x*n] * B[j+x*k]
				}
			case 3:
				for x := 0; x < m; x++ {
					d += A[x+i*m] * B[x+j*m]
				}
			case 4:
				for x := 0; x < m; x++ {
					d += A[x+i*m] * B[j+x*k]
				}
			}
			if beta == 0.0 {
				C[i+j*n] = alpha * d
			} else {
				C[i+j*n] = alpha*d + beta*C[i+j*n]
			}
		}
	}
}

// LUDcmp performs in-place LU decomposition of the n x n matrix A with
// partial pivoting; indx receives the pivot permutation. Returns non-zero on
// a singular matrix.
func LUDcmp(A []float64, n int, indx []int, d *float64) int {
	vv := Mat(n, 1)
	*d = 1.0
	for i := 0; i < n; i++ {
		big := 0.0
		for j := 0; j < n; j++ {
			if tmp := math.Abs(A[i+j*n]); tmp > big {
				big = tmp
			}
		}
		if big > 0.0 {
			vv[i] = 1.0 / big
		} else {
			return -1
		}
	}
	var imax int
	for j := 0; j < n; j++ {
		for i := 0; i < j; i++ {
			s := A[i+j*n]
			for k := 0; k < i; k++ {
				s -= A[i+k*n] * A[k+j*n]
			}
			A[i+j*n] = s
		}
		big := 0.0
		for i := j; i < n; i++ {
			s := A[i+j*n]
			for k := 0; k < j; k++ {
				s -= A[i+k*n] * A[k+j*n]
			}
			A[i+j*n] = s
			if tmp := vv[i] * math.Abs(s); tmp >= big {
				big = tmp
				imax = i
			}
		}
		if j != imax {
			for k := 0; k < n; k++ {
				A[imax+k*n], A[j+k*n] = A[j+k*n], A[imax+k*n]
			}
			*d = -(*d)
			vv[imax] = vv[j]
		}
		indx[j] = imax
		if A[j+j*n] == 0.0 {
			return -1
		}
		if j != n-1 {
			tmp := 1.0 / A[j+j*n]
			for i := j + 1; i < n; i++ {
				A[i+j*n] *= tmp
			}
		}
	}
	return 0
}

// LUBksb solves A*x=b in place given the LU decomposition from LUDcmp.
func LUBksb(A []float64, n int, indx []int, b []float64) {
	ii := -1
	for i := 0; i < n; i++ {
		ip := indx[i]
		s := b[ip]
		b[ip] = b[i]
		if ii >= 0 {
			for j := ii; j < i; j++ {
				s -= A[i+j*n] * b[j]
			}
		} else if s != 0.0 {
			ii = i
		}
		b[i] = s
	}
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < n; j++ {
			s -= A[i+j*n] * b[j]
		}
		b[i] = s / A[i+i*n]
	}
}

// MatInv inverts the n x n matrix A in place. Returns non-zero if singular.
func MatInv(A []float64, n int) int {
	var d float64
	indx := make([]int, n)
	B := Mat(n, n)
	copy(B, A)
	if LUDcmp(B, n, indx, &d) != 0 {
		return -1
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			A[i+j*n] = 0.0
		}
		A[j+j*n] = 1.0
		LUBksb(B, n, indx, A[j*n:])
	}
	return 0
}

// SolveSmall solves the small symmetric system N*x=g (N is n x n,
// column-major) via LU decomposition, returning non-zero on a singular
// matrix. Used in stepper.go as a fallback normal-equation solve when
// gonum's Cholesky factorization rejects a matrix that is ill-conditioned
// but not exactly singular in floating point.
func SolveSmall(N []float64, g []float64, n int, x []float64) int {
	B := Mat(n, n)
	copy(B, N)
	if MatInv(B, n) != 0 {
		return -1
	}
	MatMul("NN", n, 1, n, 1.0, B, g, 0.0, x)
	return 0
}

func sqr(x float64) float64 { return x * x }
