package random

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var ErrEmptyRange = errors.New("random: range must be positive")

// Source draws uniformly distributed integers in [0, n).
type Source interface {
	Int64N(n int64) (int64, error)
}

type cryptoSource struct{}

// Crypto returns a Source backed by crypto/rand. It holds no state and is safe
// for concurrent use.
func Crypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Int64N(n int64) (int64, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return v.Int64(), nil
}
