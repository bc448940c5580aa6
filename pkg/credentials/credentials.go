// Package credentials derives candidate login identities and one-time passwords.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSlug           = "candidate"
	DefaultPasswordLength = 12
	idFragmentLength      = 6

	// No 0 O 1 l I
	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// Slugify lower-cases s and collapses every run of non [a-z0-9] characters into a
// single dot. Leading and trailing dots are trimmed; an empty result becomes "candidate".
func Slugify(s string) string {
	if out := slug(s); out != "" {
		return out
	}
	return DefaultSlug
}

func slug(s string) string {
	var b strings.Builder
	pendingDot := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDot && b.Len() > 0 {
				b.WriteByte('.')
			}
			pendingDot = false
			b.WriteRune(r)
			continue
		}
		pendingDot = true
	}
	return b.String()
}

// CandidateEmail synthesizes "<slug>.<id[:6]>@<domain>" and returns it with its local part.
func CandidateEmail(name, interviewID, domain string) (email, username string) {
	frag := interviewID
	if len(frag) > idFragmentLength {
		frag = frag[:idFragmentLength]
	}
	username = Slugify(name)
	if f := slug(frag); f != "" {
		username = username + "." + f
	}
	return username + "@" + domain, username
}

// UsernameFromEmail returns the local part of email.
func UsernameFromEmail(email string) string {
	if at := strings.LastIndex(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// GeneratePassword returns a random password of length n drawn from an alphabet
// without visually ambiguous characters.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		n = DefaultPasswordLength
	}
	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		buf[i] = passwordAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
