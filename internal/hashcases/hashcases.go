// Package hashcases registers the hash operations measured by hashbench.
package hashcases

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"hash/maphash"
	"math/rand/v2"
	"strings"

	"github.com/mwiater/hashbench/internal/benchmark"
)

const (
	// DefaultSeed pins the input generator so every run hashes the same bytes.
	DefaultSeed uint64 = 42
	// DefaultSize is the length of the generated input in characters.
	DefaultSize = 1000

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Case names, in registration order.
const (
	SHA256Hash     = "SHA256Hash"
	MD5Hash        = "MD5Hash"
	StringHashCode = "StringHashCode"
	CustomHash     = "CustomHash"
)

// Names returns the case names in registration order.
func Names() []string {
	return []string{SHA256Hash, MD5Hash, StringHashCode, CustomHash}
}

// Input returns size characters drawn from an alphanumeric alphabet by a
// generator seeded with seed. The same seed always yields the same string.
func Input(seed uint64, size int) string {
	if size < 0 {
		size = 0
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	var b strings.Builder
	b.Grow(size)
	for i := 0; i < size; i++ {
		b.WriteByte(alphabet[rng.IntN(len(alphabet))])
	}
	return b.String()
}

// Rolling31 is the classic multiply-by-31 string hash with 32-bit wraparound.
func Rolling31(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	return h
}

// Register adds the four hash cases over input to reg. If baseline names one
// of them, that case is marked as the baseline.
func Register(reg *benchmark.Registry, input string, baseline string) error {
	if baseline != "" && !known(baseline) {
		return fmt.Errorf("unknown baseline %q (want one of %s)", baseline, strings.Join(Names(), ", "))
	}
	data := []byte(input)

	cases := []*benchmark.Case{
		digestCase(SHA256Hash, sha256.New, data, baseline),
		digestCase(MD5Hash, md5.New, data, baseline),
		stringHashCase(input, baseline),
		benchmark.New(CustomHash, func() int32 { return Rolling31(input) }, baselineOpt(CustomHash, baseline)...),
	}
	for _, c := range cases {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// digestCase acquires the hash object in setup and releases it in teardown so
// construction cost stays out of the measurement.
func digestCase(name string, newHash func() hash.Hash, data []byte, baseline string) *benchmark.Case {
	var h hash.Hash
	opts := append(baselineOpt(name, baseline),
		benchmark.WithSetup(func() error {
			h = newHash()
			return nil
		}),
		benchmark.WithTeardown(func() error {
			h = nil
			return nil
		}),
	)
	return benchmark.New(name, func() []byte {
		h.Reset()
		h.Write(data)
		return h.Sum(nil)
	}, opts...)
}

func stringHashCase(input, baseline string) *benchmark.Case {
	var seed maphash.Seed
	opts := append(baselineOpt(StringHashCode, baseline),
		benchmark.WithSetup(func() error {
			seed = maphash.MakeSeed()
			return nil
		}),
	)
	return benchmark.New(StringHashCode, func() uint64 {
		return maphash.String(seed, input)
	}, opts...)
}

func baselineOpt(name, baseline string) []benchmark.CaseOption {
	if name == baseline {
		return []benchmark.CaseOption{benchmark.AsBaseline()}
	}
	return nil
}

func known(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}
