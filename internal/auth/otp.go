package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
)

// OTPLength is the number of digits in a verification code.
const OTPLength = 6

var otpFormat = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, OTPLength))

// GenerateOTP returns a random numeric one-time password.
func GenerateOTP() (string, error) {
	digits := make([]byte, OTPLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate OTP: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// ValidOTPFormat reports whether a candidate looks like an OTP.
func ValidOTPFormat(otp string) bool {
	return otpFormat.MatchString(otp)
}

// GenerateResetToken returns a random hex token for password reset links.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashCode returns the hex sha256 digest of a code. Codes are stored hashed
// so a leaked cache dump cannot be replayed directly.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
