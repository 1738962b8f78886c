package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const thumbSize = 256

// Media stores decoded image payloads under a base directory. Thumbnails
// are re-encoded to a square JPEG so clients never see arbitrary uploaded
// bytes echoed back.
type Media struct {
	base string
}

func NewMedia(base string) *Media {
	return &Media{base: base}
}

func (s *Media) SaveThumbnail(profileID uuid.UUID, filename string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if name == "" || name == "." {
		name = "thumbnail"
	}
	relPath := filepath.Join("thumbnails", profileID.String(), name+".jpg")
	fullPath := filepath.Join(s.base, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := imaging.Save(thumb, fullPath, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return relPath, nil
}
