package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// OTP codes are drawn uniformly from [100000, 999999]. Codes with a leading
// zero are never issued; the effective space is 900000 values. Kept for
// compatibility with the codes existing clients expect.
const (
	otpMin = 100000
	otpMax = 999999
)

// DefaultOTPTTL is how long an issued code stays valid.
const DefaultOTPTTL = 5 * time.Minute

var otpFormat = regexp.MustCompile(`^[0-9]{6}$`)

// GenerateOTP returns a uniformly random 6-digit recovery code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+otpMin), nil
}

// ValidOTPFormat reports whether s is exactly six digits.
func ValidOTPFormat(s string) bool {
	return otpFormat.MatchString(s)
}
