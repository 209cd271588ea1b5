package catalog

import (
	"path/filepath"
	"strings"
)

// DefaultImageExtensions and DefaultVideoExtensions are the allow-lists used
// when configuration does not override them.
var (
	DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"}
	DefaultVideoExtensions = []string{".mp4", ".mov", ".webm", ".m4v", ".ogg"}
)

// Classifier maps file extensions to media kinds.
type Classifier struct {
	images map[string]bool
	videos map[string]bool
}

// NewClassifier builds a classifier from extension allow-lists. Extensions are
// matched case-insensitively and may be given with or without the leading dot.
// Nil lists fall back to the defaults.
func NewClassifier(imageExts, videoExts []string) *Classifier {
	if imageExts == nil {
		imageExts = DefaultImageExtensions
	}
	if videoExts == nil {
		videoExts = DefaultVideoExtensions
	}
	return &Classifier{
		images: extSet(imageExts),
		videos: extSet(videoExts),
	}
}

func extSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// Classify returns the kind for name based on its extension.
func (c *Classifier) Classify(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if c.videos[ext] {
		return KindVideo
	}
	if c.images[ext] {
		return KindImage
	}
	return KindUnknown
}

// Hidden reports whether name is a dotfile.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
