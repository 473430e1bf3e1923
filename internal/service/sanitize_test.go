package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"Nice post <script>alert(1)</script>": "Nice post",
		"<b>bold</b> move":                    "bold move",
		`<img src=x onerror="alert(1)">hi`:    "hi",
		"Tom & Jerry's":                       "Tom & Jerry's",
		"&lt;script&gt;":                      "&lt;script&gt;",
		"  plain  ":                           "plain",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeText(input), "input %q", input)
	}
}
