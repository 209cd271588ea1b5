// Package mount decides how each grid slot renders its item. Output is a
// declarative Instruction; a browser adapter turns it into elements.
package mount

import (
	"time"

	"kiosk-signage/internal/catalog"
	"kiosk-signage/internal/layout"
)

// Kind is the element an instruction renders.
type Kind string

const (
	KindPlaceholder Kind = "placeholder"
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
)

const (
	// DefaultPlaceholder is the static graphic shown before media loads and
	// in empty slots.
	DefaultPlaceholder = "/placeholder.svg"
	// FadeDuration is the placeholder fade-out transition.
	FadeDuration = 250 * time.Millisecond
	// videoStartFragment makes browsers decode and show the first frame.
	videoStartFragment = "#t=0.001"
)

// Load events after which the placeholder fades out. The first one to fire
// wins.
var (
	imageFadeEvents = []string{"load"}
	videoFadeEvents = []string{"loadeddata", "canplay"}
)

// Options are per-round rendering settings.
type Options struct {
	Placeholder string
	Mirror      bool
}

// VideoAttrs are the element attributes required for unattended autoplay.
type VideoAttrs struct {
	Autoplay    bool   `json:"autoplay"`
	Muted       bool   `json:"muted"`
	Loop        bool   `json:"loop"`
	PlaysInline bool   `json:"playsInline"`
	Preload     string `json:"preload"`
	Poster      string `json:"poster"`
	// AutoRotate asks the adapter to apply ComputeTransform once intrinsic
	// dimensions are known and again on every container resize.
	AutoRotate bool `json:"autoRotate"`
}

// Instruction describes how to render one slot.
type Instruction struct {
	Slot        string      `json:"slot"`
	Kind        Kind        `json:"kind"`
	ID          string      `json:"id,omitempty"`
	Src         string      `json:"src,omitempty"`
	Placeholder string      `json:"placeholder"`
	Mirror      bool        `json:"mirror"`
	FadeOn      []string    `json:"fadeOn,omitempty"`
	FadeMs      int         `json:"fadeMs,omitempty"`
	Transform   string      `json:"transform,omitempty"`
	Video       *VideoAttrs `json:"video,omitempty"`
}

// Plan returns the instruction for slot showing item. A nil, malformed or
// unknown-kind item renders the placeholder.
func Plan(slot layout.Slot, item *catalog.MediaItem, opts Options) Instruction {
	ph := opts.Placeholder
	if ph == "" {
		ph = DefaultPlaceholder
	}
	in := Instruction{Slot: string(slot), Kind: KindPlaceholder, Placeholder: ph}
	if item == nil || !item.Valid() {
		return in
	}

	in.ID = item.ID
	in.Mirror = opts.Mirror
	in.FadeMs = int(FadeDuration / time.Millisecond)

	switch item.Kind {
	case catalog.KindImage:
		in.Kind = KindImage
		in.Src = item.URL
		in.FadeOn = imageFadeEvents
		in.Transform = "none"
		if opts.Mirror {
			in.Transform = "scaleX(-1)"
		}
	case catalog.KindVideo:
		in.Kind = KindVideo
		in.Src = item.URL + videoStartFragment
		in.FadeOn = videoFadeEvents
		in.Video = &VideoAttrs{
			Autoplay:    true,
			Muted:       true,
			Loop:        true,
			PlaysInline: true,
			Preload:     "auto",
			Poster:      ph,
			AutoRotate:  true,
		}
	}
	return in
}

// PlanAll plans every cell of a laid-out round.
func PlanAll(cells []layout.Cell, opts Options) []Instruction {
	out := make([]Instruction, len(cells))
	for i, c := range cells {
		out[i] = Plan(c.Slot, c.Item, opts)
	}
	return out
}
