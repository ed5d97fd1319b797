// Package creative defines the schedulable unit of signage playback and its media classification rules.
package creative

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Known declared creative type identifiers as delivered by the backend.
const (
	TypeMP4     = "mp4"
	TypeJPG     = "jpg"
	TypeJPEG    = "jpeg"
	TypePNG     = "png"
	TypeGIF     = "gif"
	TypeTag     = "tag"
	TypeBanner  = "banner"
	TypePod     = "digital-pod"
	TypeDefault = "default"
)

// Category is the rendering category a creative resolves to.
// Every item maps to exactly one category.
type Category int

const (
	CategoryImage Category = iota
	CategoryVideo
	CategoryTag
	CategoryBanner
	CategoryPod
)

func (c Category) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryVideo:
		return "video"
	case CategoryTag:
		return "tag"
	case CategoryBanner:
		return "banner"
	case CategoryPod:
		return "digital-pod"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Item is one schedulable unit of playback.
//
// The raw backend fields (DeviceID, ScreenID, CmpID, ...) are carried through
// untouched for context and debugging; ordering authority is array position,
// not Slot.
type Item struct {
	ID            int     `json:"id"`
	Slot          int     `json:"slot"`
	MediaDuration float64 `json:"media_duration"` // seconds
	CreativeType  string  `json:"creative_type"`
	CreativeURL   string  `json:"creative_url"`

	// Optional in-media trim window, in seconds.
	StartTimeSec *float64 `json:"start_time_sec,omitempty"`
	EndTimeSec   *float64 `json:"end_time_sec,omitempty"`

	// Optional intraday schedule window (HH:MM:SS or MM:SS).
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	// Optional campaign validity window, ISO timestamps.
	CmpStart string `json:"cmp_start_date_time,omitempty"`
	CmpEnd   string `json:"cmp_end_date_time,omitempty"`

	// Raw backend fields, carried through for context.
	DeviceID  int    `json:"device_id,omitempty"`
	ScreenID  int    `json:"screen_id,omitempty"`
	MediaID   int    `json:"media_id,omitempty"`
	CmpID     int    `json:"cmp_id,omitempty"`
	LoopSlot  int    `json:"loopslot,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Category resolves the rendering category for this item from its declared
// type and, when the declaration is unknown or absent, its URL.
func (i Item) Category() Category {
	return Classify(i.CreativeType, i.CreativeURL)
}

// Classify maps a declared creative type to a rendering category.
// Resolution order: explicit known type, then URL file extension, then the
// iframe-tag category for any other absolute URL, else image-like "default".
func Classify(declared, rawURL string) Category {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case TypeMP4:
		return CategoryVideo
	case TypeJPG, TypeJPEG, TypePNG, TypeGIF, TypeDefault:
		return CategoryImage
	case TypeTag:
		return CategoryTag
	case TypeBanner:
		return CategoryBanner
	case TypePod:
		return CategoryPod
	}

	switch extension(rawURL) {
	case TypeMP4:
		return CategoryVideo
	case TypeJPG, TypeJPEG, TypePNG, TypeGIF:
		return CategoryImage
	}

	if isAbsoluteURL(rawURL) {
		return CategoryTag
	}

	return CategoryImage
}

// extension extracts the lowercase file extension from a URL path, without the dot.
func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(strings.TrimPrefix(path.Ext(rawURL), "."))
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}

func isAbsoluteURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.IsAbs() && u.Host != ""
}
