// Package idgen generates the identifiers spec.md's façade layer needs:
// a fresh requestId per public call, and a sessionId per Session.
package idgen

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RequestID returns a short random base-36 suffix, matching spec.md
// §4.7's "generates a fresh requestId (random base-36 suffix)".
func RequestID() string {
	var sb strings.Builder
	sb.WriteString("req_")
	for i := 0; i < 12; i++ {
		sb.WriteByte(base36Alphabet[rand.Intn(len(base36Alphabet))])
	}
	return sb.String()
}

// SessionID returns a fresh session identifier.
func SessionID() string {
	return uuid.NewString()
}
