package plasma

import (
	"errors"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	g := testGenome(2, 3, 5)
	g.Terms[1].Phase = 1.0 / 3.0

	code, err := Encode(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := Decode(code)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !got.Equal(g) {
		t.Errorf("decoded genome differs: %+v vs %+v", got, g)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, code := range []string{"", "!!!", "aGVsbG8"} {
		if _, err := Decode(code); !errors.Is(err, ErrMalformedCode) {
			t.Errorf("%q: expected ErrMalformedCode, got %v", code, err)
		}
	}
}

func TestDecodeRejectsInvalidGenome(t *testing.T) {
	g := testGenome(2)
	g.Terms[0].Temporal = 0
	code, err := Encode(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := Decode(code); !errors.Is(err, ErrInvalidGenome) {
		t.Errorf("expected ErrInvalidGenome, got %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := testGenome(2, 3)
	b := a.Clone()
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("equal genomes should share a fingerprint")
	}
	b.Terms[0].KX++
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different genomes should not share a fingerprint")
	}
}
