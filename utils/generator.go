package utils

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	CodePrefix       = "SVH"
	codeSuffixLength = 6
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// BuildReferralCode returns a candidate code like "SVH-AB12C3". Candidates
// are random, not guaranteed unique; callers must check the store.
func BuildReferralCode(src io.Reader) (string, error) {
	buf := make([]byte, codeSuffixLength)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s-%s", CodePrefix, buf), nil
}

// NewReferralCode builds a candidate from crypto/rand.
func NewReferralCode() (string, error) {
	return BuildReferralCode(rand.Reader)
}
