package numerics

// GoldSequence generates the 36.211 §7.2 length-31 Gold pseudorandom
// sequence: two m-sequences x1 (polynomial x^31+x^3+1, fixed initial state)
// and x2 (polynomial x^31+x^3+x^2+x+1, seeded by c_init), combined as
// c(n) = (x1(n+Nc) + x2(n+Nc)) mod 2, with Nc = 1600.
const goldNc = 1600

// GoldBits produces len chip values (0/1) of the Gold sequence seeded by
// cInit, deterministic and reproducible bit-for-bit for a given cInit.
func GoldBits(cInit uint32, length int) []byte {
	n := length + goldNc
	x1 := make([]byte, n)
	x2 := make([]byte, n)

	// x1 initial state: x1(0)=1, x1(1..30)=0.
	x1[0] = 1
	for i := 1; i < 31 && i < n; i++ {
		x1[i] = 0
	}
	// x2 initial state is cInit, LSB first: x2(i) = bit i of cInit.
	for i := 0; i < 31 && i < n; i++ {
		x2[i] = byte((cInit >> uint(i)) & 1)
	}

	for i := 31; i < n; i++ {
		x1[i] = (x1[i-3] + x1[i-31]) % 2
		x2[i] = (x2[i-3] + x2[i-2] + x2[i-1] + x2[i-31]) % 2
	}

	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = (x1[i+goldNc] + x2[i+goldNc]) % 2
	}
	return out
}

// GoldChips produces a length-long ±1 BPSK chip stream from the Gold
// sequence: chip(n) = 1 - 2*c(n), so a 0 bit maps to +1 and a 1 bit to -1.
func GoldChips(cInit uint32, length int) []float64 {
	bits := GoldBits(cInit, length)
	out := make([]float64, length)
	for i, b := range bits {
		out[i] = 1 - 2*float64(b)
	}
	return out
}
