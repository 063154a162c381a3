package utils

import (
	"errors"
	"testing"
)

func TestDecodeBase64ImageDataURI(t *testing.T) {
	data, contentType, err := DecodeBase64Image("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %s", contentType)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected payload: %q", data)
	}
}

func TestDecodeBase64ImageBarePayloadDefaultsToJPEG(t *testing.T) {
	_, contentType, err := DecodeBase64Image("aGVsbG8=")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", contentType)
	}
}

func TestDecodeBase64ImageRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"", "   ", "data:image/png;base64", "%%%not-base64%%%"} {
		if _, _, err := DecodeBase64Image(payload); !errors.Is(err, ErrInvalidImagePayload) {
			t.Fatalf("expected invalid payload for %q, got %v", payload, err)
		}
	}
}
