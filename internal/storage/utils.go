// Package storage provides object storage for generated narrations.
package storage

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bewize/audio-generator/internal/models"
)

var (
	// ErrEmptyObject is returned when asked to store an empty payload
	ErrEmptyObject = errors.New("object is empty")
	// ErrInvalidKey is returned for keys that cannot be stored
	ErrInvalidKey = errors.New("invalid object key")
)

// AudioExtension is appended to every narration key
const AudioExtension = ".mp3"

var s3URLKey = regexp.MustCompile(`amazonaws\.com/(.+)`)

// AudioKey returns the deterministic storage key of a record's narration,
// e.g. audios-bewize/flashcards/questions/<id>.mp3
func AudioKey(kind models.ContentKind, id string) (string, error) {
	src, err := kind.Source()
	if err != nil {
		return "", err
	}
	if id == "" || strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("%w: record id %q", ErrInvalidKey, id)
	}
	return src.KeyPrefix + "/" + id + AudioExtension, nil
}

// KeyFromURL extracts the object key from an S3 URL.
// Values that are not S3 URLs are returned unchanged, so stored keys pass through.
func KeyFromURL(url string) string {
	if m := s3URLKey.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return url
}
