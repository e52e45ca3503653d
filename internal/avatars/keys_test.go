package avatars

import (
	"strings"
	"testing"
)

func TestNewTempKeyIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := NewTempKey()
		if !strings.HasPrefix(key, TempKeyMarker()) {
			t.Fatalf("Temp key %q missing marker prefix", key)
		}
		if seen[key] {
			t.Fatalf("Duplicate temp key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestChildKey(t *testing.T) {
	if got := ChildKey(42); got != "avatars/child-42" {
		t.Errorf("ChildKey(42) = %q, want avatars/child-42", got)
	}
}

func TestIsTempRef(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"https://bucket.s3.amazonaws.com/avatars/tmp-abc123", true},
		{"memory://avatars/tmp-abc123", true},
		{"https://bucket.s3.amazonaws.com/avatars/child-7", false},
		{"🦄", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTempRef(tt.ref); got != tt.want {
			t.Errorf("IsTempRef(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestKeyFromRef(t *testing.T) {
	tests := []struct {
		ref     string
		wantKey string
		wantOK  bool
	}{
		{"https://bucket.s3.amazonaws.com/avatars/child-7", "avatars/child-7", true},
		{"memory://avatars/tmp-abc", "avatars/tmp-abc", true},
		{"avatars/child-1", "avatars/child-1", true},
		{"🦄", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		key, ok := KeyFromRef(tt.ref)
		if key != tt.wantKey || ok != tt.wantOK {
			t.Errorf("KeyFromRef(%q) = %q, %v, want %q, %v", tt.ref, key, ok, tt.wantKey, tt.wantOK)
		}
	}
}

func TestRandomPlaceholder(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := RandomPlaceholder()
		if !IsPlaceholder(p) {
			t.Fatalf("RandomPlaceholder() returned unknown value %q", p)
		}
	}
}

func TestPlaceholderIsNotAKey(t *testing.T) {
	for _, p := range placeholders {
		if _, ok := KeyFromRef(p); ok {
			t.Errorf("Placeholder %q parsed as a storage key", p)
		}
	}
}
