package mount

import (
	"slices"
	"sync"
)

// Tracker follows one mounted video: it recomputes the transform whenever
// the container is resized and fades the placeholder exactly once. After
// Unmount every update is ignored.
type Tracker struct {
	mu        sync.Mutex
	mirror    bool
	fadeOn    []string
	faded     bool
	unmounted bool
	videoW    float64
	videoH    float64
	contW     float64
	contH     float64
	current   Transform
	hasXform  bool
}

// NewTracker starts tracking the mount described by in.
func NewTracker(in Instruction) *Tracker {
	return &Tracker{mirror: in.Mirror, fadeOn: in.FadeOn}
}

// Signal reports a media event. It returns true only for the first event
// that should fade the placeholder out.
func (t *Tracker) Signal(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unmounted || t.faded || !slices.Contains(t.fadeOn, event) {
		return false
	}
	t.faded = true
	return true
}

// Faded reports whether the placeholder has been faded out.
func (t *Tracker) Faded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.faded
}

// SetIntrinsic records the video's natural size once metadata is loaded.
func (t *Tracker) SetIntrinsic(w, h float64) (Transform, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unmounted {
		return Transform{}, false
	}
	t.videoW, t.videoH = w, h
	return t.recomputeLocked()
}

// Resize records a new container size and returns the updated transform.
// Repeating the same size yields the same transform.
func (t *Tracker) Resize(w, h float64) (Transform, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unmounted {
		return Transform{}, false
	}
	t.contW, t.contH = w, h
	return t.recomputeLocked()
}

// Current returns the last computed transform.
func (t *Tracker) Current() (Transform, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.hasXform
}

// Unmount stops observing; later events and resizes are no-ops.
func (t *Tracker) Unmount() {
	t.mu.Lock()
	t.unmounted = true
	t.mu.Unlock()
}

func (t *Tracker) recomputeLocked() (Transform, bool) {
	xf, ok := ComputeTransform(t.videoW, t.videoH, t.contW, t.contH, t.mirror)
	if !ok {
		return Transform{}, false
	}
	t.current, t.hasXform = xf, true
	return xf, true
}
