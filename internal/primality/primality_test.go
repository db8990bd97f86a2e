package primality

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// sieve returns the primality table for [0, limit).
func sieve(limit int) []bool {
	prime := make([]bool, limit)
	for i := 2; i < limit; i++ {
		prime[i] = true
	}
	for i := 2; i*i < limit; i++ {
		if !prime[i] {
			continue
		}
		for j := i * i; j < limit; j += i {
			prime[j] = false
		}
	}
	return prime
}

func TestIsPrime_SmallValues(t *testing.T) {
	t.Parallel()
	o := NewOracle()

	for _, n := range []uint64{0, 1} {
		if o.IsPrime(n) {
			t.Errorf("IsPrime(%d) = true, want false", n)
		}
	}
	for _, n := range []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29} {
		if !o.IsPrime(n) {
			t.Errorf("IsPrime(%d) = false, want true", n)
		}
	}
	for _, n := range []uint64{4, 6, 8, 9, 10, 12, 15, 21, 25, 27} {
		if o.IsPrime(n) {
			t.Errorf("IsPrime(%d) = true, want false", n)
		}
	}
}

// TestIsPrime_AgainstSieve compares the oracle with a sieve below 10,000.
// Primes must never be rejected; composites other than Carmichael numbers
// are accepted with probability at most 2^-100.
func TestIsPrime_AgainstSieve(t *testing.T) {
	t.Parallel()
	const limit = 10000
	table := sieve(limit)
	carmichael := map[uint64]bool{561: true, 1105: true, 1729: true, 2465: true, 2821: true, 6601: true, 8911: true}

	for run := 0; run < 3; run++ {
		o := NewOracle()
		for n := uint64(0); n < limit; n++ {
			got := o.IsPrime(n)
			if table[n] && !got {
				t.Fatalf("run %d: false negative for prime %d", run, n)
			}
			if !table[n] && got && !carmichael[n] {
				t.Errorf("run %d: false positive for composite %d", run, n)
			}
		}
	}
}

func TestIsPrime_LargePrimes(t *testing.T) {
	t.Parallel()
	o := NewOracle()
	for _, n := range []uint64{
		2147483647,           // 2^31-1
		2305843009213693951,  // 2^61-1
		18446744073709551557, // largest 64-bit prime
	} {
		if !o.IsPrime(n) {
			t.Errorf("IsPrime(%d) = false, want true", n)
		}
	}
	if o.IsPrime(18446744073709551615) {
		t.Error("IsPrime(2^64-1) = true, want false")
	}
}

func TestIsPrime_Deterministic(t *testing.T) {
	t.Parallel()
	var seed [32]byte
	seed[0] = 42
	a, b := NewOracleWithSeed(seed), NewOracleWithSeed(seed)
	for n := uint64(0); n < 2000; n++ {
		if a.IsPrime(n) != b.IsPrime(n) {
			t.Fatalf("seeded oracles disagree on %d", n)
		}
	}
}

func TestPackageIsPrime(t *testing.T) {
	t.Parallel()
	if !IsPrime(7919) || IsPrime(7917) {
		t.Error("package-level IsPrime gave a wrong answer")
	}
}

func TestModPow_KnownValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, exp, mod, want uint64
	}{
		{2, 10, 1000, 24},
		{3, 0, 7, 1},
		{0, 5, 7, 0},
		{5, 3, 1, 0},
		{4, 13, 497, 445},
		{18446744073709551614, 2, 18446744073709551615, 1},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d^%d_mod_%d", tc.base, tc.exp, tc.mod), func(t *testing.T) {
			t.Parallel()
			if got := ModPow(tc.base, tc.exp, tc.mod); got != tc.want {
				t.Errorf("ModPow(%d, %d, %d) = %d, want %d", tc.base, tc.exp, tc.mod, got, tc.want)
			}
		})
	}
}

// TestModPow_MatchesBigInt checks ModPow against math/big over the whole
// 64-bit range, where a naive 64-bit product would overflow.
func TestModPow_MatchesBigInt(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(parameters)

	properties.Property("ModPow equals big.Int.Exp", prop.ForAll(
		func(base, exp, mod uint64) bool {
			if mod == 0 {
				mod = 1
			}
			want := new(big.Int).Exp(
				new(big.Int).SetUint64(base),
				new(big.Int).SetUint64(exp),
				new(big.Int).SetUint64(mod),
			)
			return ModPow(base, exp, mod) == want.Uint64()
		},
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func BenchmarkIsPrime(b *testing.B) {
	o := NewOracle()
	for b.Loop() {
		o.IsPrime(1000003)
	}
}
