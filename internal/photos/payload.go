package photos

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/estate/pkg/formatting"
)

// extensions lists the image types accepted for upload.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// Photo is a decoded image ready for upload.
type Photo struct {
	ContentType string
	Data        []byte
}

// Ext returns the file extension for the photo's content type.
func (p Photo) Ext() string {
	return extensions[p.ContentType]
}

// IsPayload reports whether s carries image data, as opposed to a reference
// to an already hosted image.
func IsPayload(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// IsRemote reports whether s is an absolute http(s) URL.
func IsRemote(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// Decode parses a base64 data URI such as "data:image/png;base64,iVBOR...".
// The declared type must agree with the sniffed content and the decoded
// size must not exceed maxSize bytes.
func Decode(payload string, maxSize int64) (Photo, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), "data:")
	if !ok {
		return Photo{}, fmt.Errorf("%w: expected a data URI", ErrInvalidPhoto)
	}

	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return Photo{}, fmt.Errorf("%w: malformed data URI", ErrInvalidPhoto)
	}

	declared, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Photo{}, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidPhoto)
	}
	declared = strings.ToLower(declared)
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > int(maxSize)+2 {
		return Photo{}, fmt.Errorf("%w (%s)", ErrTooLarge, formatting.FormatBytes(maxSize, 0))
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	if int64(len(data)) > maxSize {
		return Photo{}, fmt.Errorf("%w (%s)", ErrTooLarge, formatting.FormatBytes(maxSize, 0))
	}

	sniffed := http.DetectContentType(data)
	if _, ok := extensions[sniffed]; !ok {
		return Photo{}, fmt.Errorf("%w: unsupported content type %s", ErrInvalidPhoto, sniffed)
	}
	if declared != "" && declared != sniffed {
		return Photo{}, fmt.Errorf("%w: declared %s but content is %s", ErrInvalidPhoto, declared, sniffed)
	}

	return Photo{ContentType: sniffed, Data: data}, nil
}
