package domain

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

// Mode enumerates the supported generation modes.
type Mode string

const (
	ModeImage   Mode = "IMAGE"
	ModeVideo   Mode = "VIDEO"
	ModeEdit    Mode = "EDIT"
	ModeAnalyze Mode = "ANALYZE"
)

// ParseMode normalizes free-form user input into a supported mode.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModeImage:
		return ModeImage, true
	case ModeVideo:
		return ModeVideo, true
	case ModeEdit:
		return ModeEdit, true
	case ModeAnalyze:
		return ModeAnalyze, true
	default:
		return "", false
	}
}

// MediaKind enumerates the artifact types a pipeline can produce.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindText  MediaKind = "text"
)

// Kind returns the artifact type produced by a mode. Edits always yield
// images and analysis always yields text.
func (m Mode) Kind() MediaKind {
	switch m {
	case ModeVideo:
		return MediaKindVideo
	case ModeAnalyze:
		return MediaKindText
	default:
		return MediaKindImage
	}
}

// MediaItem is the persisted result record. Created exactly once by a
// pipeline on success and never mutated afterwards; removed only by an
// explicit clear-all or by storage eviction.
type MediaItem struct {
	ID        string        `json:"id"`
	Kind      MediaKind     `json:"type"`
	URL       string        `json:"url"`
	Prompt    string        `json:"prompt"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  MediaMetadata `json:"metadata"`
}

// MediaMetadata carries the originating request settings. Opaque to the
// gallery store.
type MediaMetadata struct {
	Config GenerationConfig `json:"config"`
	Mode   Mode             `json:"mode"`
}

const itemIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewItemID returns a short random base-36 token. Collision-tolerant by
// contract: the gallery is a single-session log and does not require
// uniqueness.
func NewItemID() string {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(itemIDAlphabet))))
		if err != nil {
			return time.Now().Format("20060102150405.000000000")
		}
		b.WriteByte(itemIDAlphabet[n.Int64()])
	}
	return b.String()
}
