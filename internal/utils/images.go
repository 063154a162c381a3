package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidImagePayload = errors.New("invalid base64 image payload")

// DecodeBase64Image decodes a data-URI image payload
// ("data:image/png;base64,...") into raw bytes and its content type.
// A bare base64 string without the data-URI prefix is treated as JPEG.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrInvalidImagePayload
	}

	contentType := "image/jpeg"
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", ErrInvalidImagePayload
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrInvalidImagePayload
	}
	return data, contentType, nil
}
