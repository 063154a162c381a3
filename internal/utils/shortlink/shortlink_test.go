package shortlink

import (
	"errors"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, seq := range []int64{1, 42, 1_000_000} {
		code, err := codec.Encode(seq)
		if err != nil {
			t.Fatalf("encode %d: %v", seq, err)
		}
		if len(code) < 8 {
			t.Fatalf("code %q shorter than minimum length", code)
		}

		got, err := codec.Decode(code)
		if err != nil {
			t.Fatalf("decode %q: %v", code, err)
		}
		if got != seq {
			t.Fatalf("round trip mismatch: %d != %d", got, seq)
		}
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec, err := NewCodec("test-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	if _, err := codec.Decode("!!! not a code !!!"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}
}

func TestCodecSaltChangesCodes(t *testing.T) {
	a, err := NewCodec("salt-a")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	b, err := NewCodec("salt-b")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	codeA, _ := a.Encode(7)
	codeB, _ := b.Encode(7)
	if codeA == codeB {
		t.Fatal("different salts must produce different codes")
	}
}
