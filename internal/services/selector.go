package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"campaign/internal/models"
)

// RandomSource yields uniform integers in [0, n).
// *math/rand.Rand satisfies it, which is what tests inject.
type RandomSource interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct {
	reader io.Reader
}

// Intn returns a uniform random int in [0, n) using crypto/rand (CSPRNG).
// It panics if the entropy source fails, as crypto/rand.Read does.
func (s CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r := s.reader
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto source: %v", err))
	}
	return int(v.Int64())
}

// pickIndex returns the index of the variant owning a uniformly drawn slot.
// Each variant with stock and a positive weight owns Weight slots; all others own none.
func pickIndex(variants []*models.PrizeVariant, src RandomSource) (int, bool) {
	pool := 0
	for _, v := range variants {
		if eligible(v) {
			pool += v.Weight
		}
	}
	if pool <= 0 {
		return -1, false
	}
	slot := src.Intn(pool)
	var cum int
	for i, v := range variants {
		if !eligible(v) {
			continue
		}
		cum += v.Weight
		if slot < cum {
			return i, true
		}
	}
	return -1, false
}

func eligible(v *models.PrizeVariant) bool {
	return v != nil && v.RemainingStock > 0 && v.Weight > 0
}
