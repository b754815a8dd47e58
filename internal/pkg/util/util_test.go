package util

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateOrderCodeFormat(t *testing.T) {
	now := time.Date(2025, time.March, 5, 13, 45, 30, 0, time.UTC)

	code := GenerateOrderCode(42, now)

	pattern := regexp.MustCompile(`^ORD-42-20250305134530-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{4}$`)
	if !pattern.MatchString(code) {
		t.Fatalf("unexpected order code %q", code)
	}
}

func TestGenerateOrderCodeSuffixVaries(t *testing.T) {
	now := time.Now().UTC()

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		seen[GenerateOrderCode(1, now)] = struct{}{}
	}

	// 4 random characters out of a 32-char alphabet; 50 draws colliding into
	// a single value would mean the suffix is not random at all.
	if len(seen) < 2 {
		t.Fatal("expected random suffixes to differ across generations")
	}
}
