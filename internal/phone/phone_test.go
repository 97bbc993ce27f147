package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsSeparators(t *testing.T) {
	require.Equal(t, "+16264638602", Normalize("+1 (626) 463-8602"))
	require.Equal(t, "+14154154155", Normalize("+14154154155"))
	require.Equal(t, "+91.98765", Normalize("+91 .98-765"), "only spaces, dashes and parens are removed")
	require.Equal(t, "", Normalize(" - ( ) "))
}

func TestCleanKeepsDigitsAndPlus(t *testing.T) {
	require.Equal(t, "+911234567890", Clean("+91 12345-67890"))
	require.Equal(t, "+16264638602", Clean("+1 (626) 463.8602 ext"))
	require.Equal(t, "", Clean("call me"))
}

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"+911234567890", true},
		{"+1234567890", true},
		{"+1 (626) 463-8602", true},
		{"911234567890", false},
		{"+123456789", false},
		{"+", false},
		{"", false},
		{"1+234567890", false},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, Valid(tc.in), "Valid(%q)", tc.in)
	}
}
