// Package otp issues and checks the one-time codes used to verify an email
// before registration.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Store keeps at most one live code per email.
type Store interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume deletes the stored code and reports true only when it matches and has not expired.
	Consume(ctx context.Context, email, code string) (bool, error)
}

const codeLength = 6

// Generate returns a uniformly random six-digit numeric code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("can't generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
