// Package mimo implements layer mapping/precoding and their inverses for
// single-antenna transmission and 2/4-port transmit diversity (SFBC,
// SFBC+FSTD), per spec.md §4.5.
package mimo

import (
	"math"

	"github.com/n5hk/ltephy/internal/errs"
)

var invSqrt2 = complex(1/math.Sqrt(2), 0)

// Precode maps layer symbols x to per-port resource-element symbols for
// nofPorts in {1,2,4}. There is no layer-count parameter, so a mismatch
// between layer and port counts is not detected. For a single port the
// output is a pass-through copy on port 0. For diversity, len(x) must be a
// multiple of nofPorts.
func Precode(x []complex128, nofPorts int) ([][]complex128, error) {
	switch nofPorts {
	case 1:
		out := make([]complex128, len(x))
		copy(out, x)
		return [][]complex128{out}, nil
	case 2:
		return precodeSFBC2(x)
	case 4:
		return precodeSFBC4(x)
	default:
		return nil, errs.InvalidInput
	}
}

func precodeSFBC2(x []complex128) ([][]complex128, error) {
	if len(x)%2 != 0 {
		return nil, errs.InvalidInput
	}
	pairs := len(x) / 2
	port0 := make([]complex128, len(x))
	port1 := make([]complex128, len(x))
	for p := 0; p < pairs; p++ {
		x0, x1 := x[2*p], x[2*p+1]
		port0[2*p] = x0 * invSqrt2
		port0[2*p+1] = -cconj(x1) * invSqrt2
		port1[2*p] = x1 * invSqrt2
		port1[2*p+1] = cconj(x0) * invSqrt2
	}
	return [][]complex128{port0, port1}, nil
}

// precodeSFBC4 alternates 2-port SFBC across port pairs {0,2} and {1,3} in
// 4-RE groups, per 36.211 §6.3.4 (spec.md §4.5).
func precodeSFBC4(x []complex128) ([][]complex128, error) {
	if len(x)%4 != 0 {
		return nil, errs.InvalidInput
	}
	n := len(x)
	ports := make([][]complex128, 4)
	for i := range ports {
		ports[i] = make([]complex128, n)
	}
	for g := 0; g < n; g += 4 {
		// First pair of this group goes to ports {0,2}, second to {1,3}.
		a0, a1 := x[g], x[g+1]
		ports[0][g] = a0 * invSqrt2
		ports[0][g+1] = -cconj(a1) * invSqrt2
		ports[2][g] = a1 * invSqrt2
		ports[2][g+1] = cconj(a0) * invSqrt2

		b0, b1 := x[g+2], x[g+3]
		ports[1][g+2] = b0 * invSqrt2
		ports[1][g+3] = -cconj(b1) * invSqrt2
		ports[3][g+2] = b1 * invSqrt2
		ports[3][g+3] = cconj(b0) * invSqrt2
	}
	return ports, nil
}

func cconj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// Predecode is the zero-forcing receiver inverse of Precode.
//
// For 1 port, it divides received by the channel elementwise; if sigma2>0
// it instead applies the MMSE regularization h*/(|h|^2+sigma2).
//
// For 2-port diversity it analytically inverts the Alamouti structure using
// one pair of channel coefficients (h0,h1) per subcarrier pair, taken from
// the pair's first subcarrier, per spec.md §4.5.
func Predecode(rx [][]complex128, h [][]complex128, nofPorts int, sigma2 float64) ([]complex128, error) {
	switch nofPorts {
	case 1:
		return predecodeSISO(rx[0], h[0], sigma2), nil
	case 2:
		return predecodeSFBC2(rx[0], h[0], h[1])
	default:
		return nil, errs.InvalidInput
	}
}

func predecodeSISO(rx, h []complex128, sigma2 float64) []complex128 {
	out := make([]complex128, len(rx))
	for i := range rx {
		if sigma2 > 0 {
			denom := complex(real(h[i])*real(h[i])+imag(h[i])*imag(h[i])+sigma2, 0)
			out[i] = rx[i] * cconj(h[i]) / denom
		} else {
			out[i] = rx[i] / h[i]
		}
	}
	return out
}

func predecodeSFBC2(rx, h0, h1 []complex128) ([]complex128, error) {
	if len(rx)%2 != 0 {
		return nil, errs.InvalidInput
	}
	pairs := len(rx) / 2
	out := make([]complex128, len(rx))
	for p := 0; p < pairs; p++ {
		r0, r1 := rx[2*p], rx[2*p+1]
		hh0, hh1 := h0[2*p], h1[2*p]
		denom := real(hh0)*real(hh0) + imag(hh0)*imag(hh0) + real(hh1)*real(hh1) + imag(hh1)*imag(hh1)
		if denom == 0 {
			denom = 1e-12
		}
		x0 := (cconj(hh0)*r0 + hh1*cconj(r1)) / complex(denom, 0) * complex(math.Sqrt2, 0)
		x1 := (cconj(hh1)*r0 - hh0*cconj(r1)) / complex(denom, 0) * complex(math.Sqrt2, 0)
		out[2*p] = x0
		out[2*p+1] = x1
	}
	return out, nil
}
