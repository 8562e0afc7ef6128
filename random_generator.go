package numgen

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// SecureRandomGenerator implements secure random number generation using crypto/rand with caching
type SecureRandomGenerator struct {
	cache      []float64
	cacheSize  int
	cacheIndex int
	cacheMtx   sync.Mutex
}

// NewSecureRandomGenerator creates a new fast secure random generator with specified cache size
//
// If no cache size is provided, the default cache size will be used.
// The cache size should be a positive integer.
func NewSecureRandomGenerator(cacheSize ...int) *SecureRandomGenerator {
	size := DefaultFastRandomGeneratorCacheSize
	if len(cacheSize) > 0 && cacheSize[0] > 0 {
		size = cacheSize[0]
	}

	generator := &SecureRandomGenerator{
		cache:     make([]float64, size),
		cacheSize: size,
	}

	// 预填充缓存
	_ = generator.refillCache()
	return generator
}

// refillCache refills the random number cache. It stops at the first failure so a broken
// entropy source is reported instead of silently producing predictable values.
func (g *SecureRandomGenerator) refillCache() error {
	for i := 0; i < g.cacheSize; i++ {
		val, err := generateFloat()
		if err != nil {
			g.cacheIndex = g.cacheSize
			return err
		}
		g.cache[i] = val
	}

	g.cacheIndex = 0
	return nil
}

// GenerateFloat generates a fast secure random float between 0 and 1 (exclusive of 1)
func (g *SecureRandomGenerator) GenerateFloat() (float64, error) {
	g.cacheMtx.Lock()
	defer g.cacheMtx.Unlock()

	if g.cacheIndex >= g.cacheSize {
		if err := g.refillCache(); err != nil {
			return 0, err
		}
	}

	result := g.cache[g.cacheIndex]
	g.cacheIndex++
	return result, nil
}

// GenerateInRange generates a random number within [min, max] (inclusive), min < max
func (g *SecureRandomGenerator) GenerateInRange(min, max int) (int, error) {
	return Generate(g, min, max)
}

// Generate draws from src and scales the float linearly onto [min, max]
func Generate(src RandomSource, min, max int) (int, error) {
	if err := ValidateRange(min, max); err != nil {
		return 0, err
	}

	randomFloat, err := src.GenerateFloat()
	if err != nil {
		return 0, ErrSystemError.WithDetails("random source failed").WithCause(err)
	}

	return scale(randomFloat, min, max), nil
}

// scale maps f in [0, 1) onto [min, max]; clamps against floating point rounding
func scale(f float64, min, max int) int {
	rangeSize := float64(max) - float64(min) + 1
	result := int(f*rangeSize) + min
	if result > max {
		result = max
	}
	if result < min {
		result = min
	}
	return result
}

// generateFloat generates a secure random float between 0 and 1 (exclusive of 1)
func generateFloat() (float64, error) {
	randomBig, err := rand.Int(rand.Reader, big.NewInt(1<<53)) // Use 53 bits for precision
	if err != nil {
		return 0, err
	}

	return float64(randomBig.Int64()) / float64(1<<53), nil
}
