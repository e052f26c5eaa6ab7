package repository

import (
	"strings"
	"testing"
)

func TestGenerateReferralCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		code := GenerateReferralCode()
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(referralCodeAlphabet, c) {
				t.Fatalf("code %q contains %q, not in alphabet", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 990 {
		t.Fatalf("only %d distinct codes out of 1000", len(seen))
	}
}

func TestGenerateReferralCodeUniform(t *testing.T) {
	// Modulo sampling over 256 byte values would favour the first
	// 256%36 = 4 alphabet characters by a factor of 8/7. Count per-char
	// frequencies over enough draws to separate that from noise.
	counts := map[byte]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		for _, c := range []byte(GenerateReferralCode()) {
			counts[c]++
		}
	}

	expected := float64(n*6) / float64(len(referralCodeAlphabet))
	for i := 0; i < len(referralCodeAlphabet); i++ {
		c := referralCodeAlphabet[i]
		got := float64(counts[c])
		if got < expected*0.87 || got > expected*1.08 {
			t.Errorf("char %q drawn %d times, expected about %.0f", c, counts[c], expected)
		}
	}
}
