package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		`<a href="x">link</a>`,
		"O'Brien & Sons",
		"&lt;already escaped&gt;",
		"bell\x07 and\x00 nul",
		"  padded  ",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
	assert.Equal(t, "bell and nul", Sanitize("bell\x07 and\x00 nul"))
	assert.Equal(t, "&lt;already escaped&gt;", Sanitize("&lt;already escaped&gt;"))
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"Jane@Example.COM":          "jane@example.com",
		" jane@example.com ":        "jane@example.com",
		"J.A.N.E+promo@gmail.com":   "jane@gmail.com",
		"jane.doe@GoogleMail.com":   "janedoe@gmail.com",
		"jane+receipts@outlook.com": "jane@outlook.com",
		"jane-shop@yahoo.com":       "jane@yahoo.com",
		"jane.doe+x@example.org":    "jane.doe+x@example.org",
	}
	for in, want := range cases {
		got, err := NormalizeEmail(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeEmailRejects(t *testing.T) {
	_, err := NormalizeEmail("")
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = NormalizeEmail("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)

	_, err = NormalizeEmail("+tag@gmail.com")
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)
}
