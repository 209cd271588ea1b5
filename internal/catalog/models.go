// Package catalog enumerates media files in a directory and orders them
// newest first for the rotation engine.
package catalog

import "time"

// Kind classifies a media file by extension.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

// Playable reports whether items of this kind may be selected and laid out.
func (k Kind) Playable() bool {
	return k == KindImage || k == KindVideo
}

// MediaItem describes one media file. ID is the filename, which keeps it
// stable across catalog rebuilds.
type MediaItem struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	URL      string  `json:"url"`
	Kind     Kind    `json:"kind"`
	SortKey  float64 `json:"sortKey"`
	MtimeMs  float64 `json:"mtimeMs"`
	Size     int64   `json:"size"`
}

// Valid reports whether the item carries enough data to be shown.
func (m MediaItem) Valid() bool {
	return m.ID != "" && m.URL != "" && m.Kind.Playable()
}

// Feed is the JSON document served to display clients on every refresh.
type Feed struct {
	OK                bool        `json:"ok"`
	Count             int         `json:"count"`
	RefreshSeconds    int         `json:"refreshSeconds"`
	MirrorVideos      bool        `json:"mirrorVideos"`
	RequireAtLeast    int         `json:"requireAtLeast"`
	StaticCenterImage string      `json:"staticCenterImage"`
	RecentStrategy    string      `json:"recentStrategy"`
	Media             []MediaItem `json:"media"`
}

// Lister yields the current catalog snapshot.
type Lister interface {
	List() []MediaItem
}

func millis(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Millisecond)
}
