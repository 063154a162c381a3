package shortlink

import (
	"errors"

	"github.com/speps/go-hashids/v2"
)

var ErrInvalidCode = errors.New("invalid short link code")

// Codec encodes a recipe sequence number into a compact url-safe token
// and back. Tokens are stable for a given salt, so nothing extra is
// stored per recipe.
type Codec struct {
	h *hashids.HashID
}

func NewCodec(salt string) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(seq int64) (string, error) {
	return c.h.EncodeInt64([]int64{seq})
}

func (c *Codec) Decode(code string) (int64, error) {
	seqs, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(seqs) != 1 {
		return 0, ErrInvalidCode
	}
	return seqs[0], nil
}
