package crypto

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestSealOpenRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	sealed, err := svc.Seal("0123456789")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !strings.HasPrefix(sealed, sealedPrefix) {
		t.Fatalf("expected sealed prefix, got %q", sealed)
	}
	if sealed == "0123456789" {
		t.Fatal("sealed value must not equal plaintext")
	}
	opened, err := svc.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "0123456789" {
		t.Fatalf("round trip mismatch: %q", opened)
	}
}

func TestSealNondeterministic(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	a, _ := svc.Seal("same")
	b, _ := svc.Seal("same")
	if a == b {
		t.Fatal("two seals of the same value must differ")
	}
}

func TestUnconfiguredPassthrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Configured() {
		t.Fatal("empty key must leave service unconfigured")
	}
	sealed, err := svc.Seal("plain")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed != "plain" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
	opened, err := svc.Open("plain")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "plain" {
		t.Fatalf("expected passthrough, got %q", opened)
	}
}

func TestOpenPlainValueWithKey(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	opened, err := svc.Open("legacy-plain")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "legacy-plain" {
		t.Fatalf("plain rows must read unchanged, got %q", opened)
	}
}

func TestOpenEncryptedWithoutKey(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	sealed, _ := svc.Seal("secret")

	bare, err := New("")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := bare.Open(sealed); err == nil {
		t.Fatal("expected error opening sealed value without a key")
	}
}

func TestBadKeyLength(t *testing.T) {
	if _, err := New("c2hvcnQ="); err == nil {
		t.Fatal("expected error for short key")
	}
}
