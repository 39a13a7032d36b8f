package domain

import "strings"

// AspectRatio enumerates the eight supported output ratios.
type AspectRatio string

const (
	AspectSquare         AspectRatio = "1:1"
	AspectPortrait23     AspectRatio = "2:3"
	AspectLandscape32    AspectRatio = "3:2"
	AspectPortrait34     AspectRatio = "3:4"
	AspectLandscape43    AspectRatio = "4:3"
	AspectVertical       AspectRatio = "9:16"
	AspectHorizontal     AspectRatio = "16:9"
	AspectUltraWide      AspectRatio = "21:9"
	DefaultAspectRatio               = AspectSquare
	DefaultImageSize                 = ImageSize1K
	DefaultVideoResolution           = VideoRes720p
)

var aspectRatios = map[AspectRatio]struct{}{
	AspectSquare: {}, AspectPortrait23: {}, AspectLandscape32: {},
	AspectPortrait34: {}, AspectLandscape43: {}, AspectVertical: {},
	AspectHorizontal: {}, AspectUltraWide: {},
}

// ImageSize enumerates the resolution classes of the primary image model.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// VideoResolution enumerates the supported video output resolutions.
type VideoResolution string

const (
	VideoRes720p  VideoResolution = "720p"
	VideoRes1080p VideoResolution = "1080p"
)

// StyleNone marks the absence of an artistic style.
const StyleNone = "None"

// GenerationConfig is the per-request value object. Immutable once a
// dispatch begins; copied into the resulting item's metadata.
type GenerationConfig struct {
	AspectRatio AspectRatio     `json:"aspectRatio"`
	ImageSize   ImageSize       `json:"imageSize"`
	VideoRes    VideoResolution `json:"videoResolution"`
	Style       string          `json:"style,omitempty"`
}

// Normalize fills unset fields with defaults and discards unknown values.
func (c GenerationConfig) Normalize() GenerationConfig {
	if _, ok := aspectRatios[c.AspectRatio]; !ok {
		c.AspectRatio = DefaultAspectRatio
	}
	switch c.ImageSize {
	case ImageSize1K, ImageSize2K, ImageSize4K:
	default:
		c.ImageSize = DefaultImageSize
	}
	switch c.VideoRes {
	case VideoRes720p, VideoRes1080p:
	default:
		c.VideoRes = DefaultVideoResolution
	}
	if strings.TrimSpace(c.Style) == "" {
		c.Style = StyleNone
	}
	return c
}

// HasStyle reports whether an artistic style label is selected.
func (c GenerationConfig) HasStyle() bool {
	style := strings.TrimSpace(c.Style)
	return style != "" && !strings.EqualFold(style, StyleNone)
}
