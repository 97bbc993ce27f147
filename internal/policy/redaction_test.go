package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := `Retell API error: 400 - {"message":"cannot dial +1 (555) 123-9876","owner":"sam@example.com"}`
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
	if strings.Contains(out, "123-9876") {
		t.Fatalf("phone digits leaked: %q", out)
	}
}

func TestRedactPIILeavesStatusCodes(t *testing.T) {
	input := "Retell API error: 422 - agent not found"
	out, changed := RedactPII(input)
	if changed || out != input {
		t.Fatalf("RedactPII(%q) = %q, %v", input, out, changed)
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"+16264638602":   "+*******8602",
		"+91 9876543210": "+********3210",
		"5551234":        "***1234",
		"123":            "***",
		"":               "",
	}
	for in, want := range cases {
		if got := MaskPhone(in); got != want {
			t.Fatalf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
