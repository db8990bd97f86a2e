// Package primality implements the probabilistic Fermat primality test used
// by every worker process.
//
// A number that fails a single trial is certainly composite. A number that
// passes all Trials trials is prime with a false-positive probability of at
// most 2^-Trials, except for Carmichael numbers, which can pass every trial.
// The test is kept as Fermat's on purpose; callers that need certainty must
// use a different test.
package primality

import (
	crand "crypto/rand"
	"math/bits"
	"math/rand/v2"
	"sync"
)

// Trials is the number of independent Fermat trials performed per call.
const Trials = 100

// Oracle tests integers for primality with its own random witness source.
// An Oracle is not safe for concurrent use; each worker owns one.
type Oracle struct {
	rng *rand.Rand
}

// NewOracle returns an oracle seeded from the operating system's entropy
// source, so oracles in different processes draw independent witnesses.
func NewOracle() *Oracle {
	var seed [32]byte
	_, _ = crand.Read(seed[:]) // crypto/rand.Read never returns an error
	return NewOracleWithSeed(seed)
}

// NewOracleWithSeed returns an oracle with a deterministic witness sequence.
func NewOracleWithSeed(seed [32]byte) *Oracle {
	return &Oracle{rng: rand.New(rand.NewChaCha8(seed))}
}

// IsPrime reports whether n is probably prime. It returns false for n < 2.
func (o *Oracle) IsPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	for range Trials {
		a := 1 + o.rng.Uint64N(n-1) // uniform in [1, n-1]
		if ModPow(a, n-1, n) != 1 {
			return false
		}
	}
	return true
}

// ModPow returns base^exp mod m using iterative square-and-multiply.
// Intermediate products are 128 bits wide, so any 64-bit modulus is safe.
// m must not be zero.
func ModPow(base, exp, m uint64) uint64 {
	if m == 1 {
		return 0
	}
	result := uint64(1)
	base %= m
	for exp > 0 {
		if exp&1 == 1 {
			result = mulMod(result, base, m)
		}
		base = mulMod(base, base, m)
		exp >>= 1
	}
	return result
}

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

var (
	defaultMu     sync.Mutex
	defaultOracle *Oracle
)

// IsPrime tests n with a lazily created process-wide oracle.
func IsPrime(n uint64) bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultOracle == nil {
		defaultOracle = NewOracle()
	}
	return defaultOracle.IsPrime(n)
}
