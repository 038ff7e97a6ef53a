package turbo

// qppPermutation returns the internal turbo interleaver pi(0..K-1), a
// permutation of the K code-block bits used to feed the second constituent
// encoder, per spec.md §4.8's quadratic-permutation-polynomial interleaver.
//
// 36.212 Table 5.1.3-3 tabulates (f1,f2) per one of 188 standard K values.
// This generalizes to any K by degrading to the linear special case f2=0
// and picking the smallest odd f1 >= 3 coprime with K, or f1 = 1 if the
// search reaches K without finding one (always yielding a valid
// bijection on Z_K, unlike an arbitrary quadratic term) — see DESIGN.md for
// why the full standard table is not reproduced here.
func qppPermutation(k int) []int {
	if k <= 1 {
		perm := make([]int, k)
		for i := range perm {
			perm[i] = i
		}
		return perm
	}
	f1 := 3
	for f1 < k {
		if gcd(f1, k) == 1 {
			break
		}
		f1 += 2
	}
	if gcd(f1, k) != 1 {
		f1 = 1
	}
	perm := make([]int, k)
	for i := 0; i < k; i++ {
		perm[i] = (f1 * i) % k
	}
	return perm
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// invertPermutation returns the inverse of a bijective permutation.
func invertPermutation(p []int) []int {
	inv := make([]int, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}
