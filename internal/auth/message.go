package auth

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// Statement is the human-readable line of every sign-in message.
const Statement = "Sign in with Ethereum to the Onchain Computer."

// Message is a Sign-In with Ethereum (EIP-4361) message.
type Message struct {
	Domain    string
	Address   string
	Statement string
	URI       string
	Version   string
	ChainID   int
	Nonce     string
	IssuedAt  time.Time
}

// String renders the exact text the wallet signs.
func (m Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", m.Domain)
	b.WriteString(m.Address)
	b.WriteString("\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "URI: %s\n", m.URI)
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", m.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", m.IssuedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// ChecksumAddress returns the EIP-55 mixed-case form of a 0x-prefixed hex
// address.
func ChecksumAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return "", fmt.Errorf("address %q must start with 0x", addr)
	}
	lower := strings.ToLower(addr[2:])
	if len(lower) != 40 {
		return "", fmt.Errorf("address %q must have 40 hex digits", addr)
	}
	if _, err := hex.DecodeString(lower); err != nil {
		return "", fmt.Errorf("address %q is not hex: %w", addr, err)
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out), nil
}
