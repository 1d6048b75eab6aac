// Package images validates uploaded pictures and encodes them as data URIs.
// Images are embedded in the resource row rather than stored as blobs.
package images

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/baharkarakas/reliefshare/internal/api/validate"
)

const (
	MaxFiles    = 5
	MaxFileSize = 5 << 20
	Field       = "images"
)

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate checks every limit up front so nothing is persisted for a bad batch.
func Validate(uploads []Upload) error {
	var errs validate.Errs
	if len(uploads) > MaxFiles {
		errs.Add(Field, fmt.Sprintf("at most %d images are allowed", MaxFiles))
	}
	for i, u := range uploads {
		field := fmt.Sprintf("%s[%d]", Field, i)
		if len(u.Data) > MaxFileSize {
			errs.Add(field, fmt.Sprintf("%s exceeds the 5MB limit", name(u, i)))
		}
		if !IsImage(u.ContentType) {
			errs.Add(field, "only images are allowed")
		}
	}
	return errs.Err()
}

func IsImage(contentType string) bool {
	mt, _, _ := strings.Cut(contentType, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}

func DataURI(u Upload) string {
	mt, _, _ := strings.Cut(u.ContentType, ";")
	return "data:" + strings.TrimSpace(mt) + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}

// Encode validates uploads and returns their data URIs in order.
func Encode(uploads []Upload) ([]string, error) {
	if err := Validate(uploads); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, DataURI(u))
	}
	return out, nil
}

func name(u Upload, i int) string {
	if u.Filename != "" {
		return u.Filename
	}
	return fmt.Sprintf("image %d", i+1)
}
