package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	selectorBytes = 12
	verifierBytes = 32
)

// ErrMalformedToken is returned by SplitVerificationToken.
var ErrMalformedToken = errors.New("malformed verification token")

// OneTimeToken is a freshly generated verification token. Raw goes into the
// email link; only Selector and the hash of Verifier are stored.
type OneTimeToken struct {
	Raw      string
	Selector string
	Verifier string
}

// NewOneTimeToken generates a random selector.verifier token.
func NewOneTimeToken() (OneTimeToken, error) {
	selector, err := randomHex(selectorBytes)
	if err != nil {
		return OneTimeToken{}, err
	}
	verifier, err := randomHex(verifierBytes)
	if err != nil {
		return OneTimeToken{}, err
	}
	return OneTimeToken{
		Raw:      selector + "." + verifier,
		Selector: selector,
		Verifier: verifier,
	}, nil
}

// SplitVerificationToken separates a raw token into selector and verifier.
func SplitVerificationToken(raw string) (selector, verifier string, err error) {
	selector, verifier, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || len(selector) != selectorBytes*2 || len(verifier) != verifierBytes*2 {
		return "", "", ErrMalformedToken
	}
	if !isHex(selector) || !isHex(verifier) {
		return "", "", ErrMalformedToken
	}
	return selector, verifier, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isHex(value string) bool {
	_, err := hex.DecodeString(value)
	return err == nil
}
