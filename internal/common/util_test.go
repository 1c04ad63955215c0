package common

import (
	"errors"
	"testing"
	"time"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

func TestGenerateRandByteArray_EntropyHint(t *testing.T) {
	const n = 32
	a := GenerateRandByteArray(n)
	b := GenerateRandByteArray(n)

	if string(a) == string(b) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

// ---------- FormatTimestamp ----------

func TestFormatTimestamp_SubSecondAndUTC(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	ts := time.Date(2025, 3, 1, 13, 4, 5, 123456789, loc)

	got := FormatTimestamp(ts)
	if got != "2025-03-01 10:04:05.123456" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}

func TestFormatTimestamp_SameSecondDistinct(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := FormatTimestamp(base)
	b := FormatTimestamp(base.Add(300 * time.Millisecond))
	if a == b {
		t.Fatalf("expected distinct timestamps within one second, got %q twice", a)
	}
	if !(a < b) {
		t.Fatalf("expected lexical order to follow time order: %q !< %q", a, b)
	}
}

// ---------- errors ----------

func TestErrDecryption_MatchesErrCrypto(t *testing.T) {
	if !errors.Is(ErrDecryption, ErrCrypto) {
		t.Fatal("ErrDecryption must match ErrCrypto")
	}
	if errors.Is(ErrCrypto, ErrDecryption) {
		t.Fatal("ErrCrypto must not match ErrDecryption")
	}
}
