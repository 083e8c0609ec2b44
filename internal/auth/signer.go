package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Signer produces a wallet signature for a message.
type Signer interface {
	Sign(ctx context.Context, message string) (string, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(ctx context.Context, message string) (string, error)

func (f SignerFunc) Sign(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// CommandSigner runs an external command with the message on stdin and
// takes the first line of its output as the signature.
type CommandSigner struct {
	Command string
	Args    []string
}

// ParseCommandSigner splits a command line on whitespace.
func ParseCommandSigner(commandLine string) (*CommandSigner, error) {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return nil, fmt.Errorf("signer command is empty")
	}
	return &CommandSigner{Command: parts[0], Args: parts[1:]}, nil
}

func (s *CommandSigner) Sign(ctx context.Context, message string) (string, error) {
	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = strings.NewReader(message)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("%s failed: %s", s.Command, msg)
			}
		}
		return "", fmt.Errorf("%s failed: %w", s.Command, err)
	}

	sig, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return "", fmt.Errorf("%s printed no signature", s.Command)
	}
	return sig, nil
}
