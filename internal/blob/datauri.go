package blob

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

// EncodeDataURI inlines data as a base64 data URI with its sniffed MIME type.
func EncodeDataURI(data []byte) string {
	mime := mimetype.Detect(data).String()
	// Drop parameters such as "; charset=utf-8" to keep the header simple.
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI reverses EncodeDataURI. Only base64 payloads are accepted.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Join(ErrInvalidDataURI, err)
	}
	return data, mime, nil
}

func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}
