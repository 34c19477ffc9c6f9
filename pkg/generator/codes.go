package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// NumericCode returns a uniformly random string of n decimal digits.
func NumericCode(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// RegistrationID returns an identifier of the form <prefix>-NNNNNN.
func RegistrationID(prefix string) (string, error) {
	code, err := NumericCode(6)
	if err != nil {
		return "", err
	}
	return prefix + "-" + code, nil
}
