package icannreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTrailingWhitespaceFromLines(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"foo\nbar\nbaz\n", "foo\nbar\nbaz\n"},
		{"foo   \nbar   \nbaz   \n", "foo\nbar\nbaz\n"},
		{"foo   \nbar   \nbaz   ", "foo\nbar\nbaz"},
		{"\nfoo\nbar\nbaz", "\nfoo\nbar\nbaz"},
		{"foo\n   \n", "foo\n\n"},
		{"foo\n   ", "foo\n"},
		{"foo\t\t\nbar", "foo\nbar"},
		{"  foo bar\n", "  foo bar\n"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripTrailingWhitespaceFromLines(tc.in), "input %q", tc.in)
	}
}

func TestStripTrailingWhitespaceFromLinesIdempotent(t *testing.T) {
	for _, s := range []string{
		"foo   \nbar\t\nbaz   ",
		"\n\n   \n",
		"no trailing newline",
		"",
	} {
		once := stripTrailingWhitespaceFromLines(s)
		assert.Equal(t, once, stripTrailingWhitespaceFromLines(once), "input %q", s)
	}
}
