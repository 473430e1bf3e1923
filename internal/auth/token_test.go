package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestOneTimeTokenRoundTrip(t *testing.T) {
	tok, err := NewOneTimeToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	selector, verifier, err := SplitVerificationToken(tok.Raw)
	if err != nil {
		t.Fatalf("unexpected error splitting: %v", err)
	}
	if selector != tok.Selector || verifier != tok.Verifier {
		t.Fatalf("split mismatch: %s/%s vs %s/%s", selector, verifier, tok.Selector, tok.Verifier)
	}

	again, _ := NewOneTimeToken()
	if again.Raw == tok.Raw {
		t.Fatal("expected distinct tokens")
	}
}

func TestSplitVerificationTokenRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"nodot",
		"abc.def",
		strings.Repeat("g", 24) + "." + strings.Repeat("a", 64),
		strings.Repeat("a", 24) + "." + strings.Repeat("a", 63),
	}
	for _, raw := range bad {
		if _, _, err := SplitVerificationToken(raw); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("%q: expected ErrMalformedToken, got %v", raw, err)
		}
	}
}
