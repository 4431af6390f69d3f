package moderation

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	caseIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CaseIDLength   = 6
)

// NewCaseID returns a random 6 character id over [A-Z0-9]. Collisions are not checked.
func NewCaseID() string {
	var sb strings.Builder
	sb.Grow(CaseIDLength)
	limit := big.NewInt(int64(len(caseIDAlphabet)))
	for i := 0; i < CaseIDLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err)
		}
		sb.WriteByte(caseIDAlphabet[n.Int64()])
	}
	return sb.String()
}

// NormalizeCaseID upper-cases user input so lookups are case-insensitive.
func NormalizeCaseID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ValidCaseID reports whether id has the case id shape.
func ValidCaseID(id string) bool {
	if len(id) != CaseIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(caseIDAlphabet, id[i]) < 0 {
			return false
		}
	}
	return true
}
