// Package otp generates numeric one-time codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generate returns a zero-padded random code of n digits.
func Generate(n int) (string, error) {
	if n <= 0 || n > 18 {
		return "", fmt.Errorf("invalid otp length %d", n)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v.Int64()), nil
}
