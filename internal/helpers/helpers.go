package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	AvatarFolder = "avatars"
	EventsFolder = "events"

	MinPasswordLength = 6
	VerifyCodeLength  = 6
)

func StringTrim(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'")
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateVerifyCode returns a six digit code in [100000, 999999].
func GenerateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// IsVerifyCode reports whether code is exactly six ASCII digits.
func IsVerifyCode(code string) bool {
	if len(code) != VerifyCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParsePage converts page/limit query values, falling back to the defaults
// for missing or non-positive input.
func ParsePage(pageStr, limitStr string, defaultLimit, maxLimit int) (page, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
