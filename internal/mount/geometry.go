package mount

import (
	"math"
	"strconv"
	"strings"
)

// Transform positions a video inside its container: optionally rotated a
// quarter turn clockwise, optionally mirrored, scaled to cover, centred.
type Transform struct {
	Rotate int     // degrees, 0 or 90
	Mirror bool    // horizontal flip
	Scale  float64 // uniform cover-fit scale
	Width  float64 // intrinsic video width in px
	Height float64 // intrinsic video height in px
}

// ComputeTransform returns the cover-fit transform for a videoW x videoH
// video in a containerW x containerH container. Landscape video is turned
// upright for portrait displays. ok is false until all dimensions are known.
func ComputeTransform(videoW, videoH, containerW, containerH float64, mirror bool) (t Transform, ok bool) {
	if videoW <= 0 || videoH <= 0 || containerW <= 0 || containerH <= 0 {
		return Transform{}, false
	}
	t = Transform{Mirror: mirror, Width: videoW, Height: videoH}
	if videoW > videoH {
		// After a 90 degree turn the video's height spans the container width.
		t.Rotate = 90
		t.Scale = math.Max(containerW/videoH, containerH/videoW)
	} else {
		t.Scale = math.Max(containerW/videoW, containerH/videoH)
	}
	return t, true
}

// CSS renders t as a CSS transform anchored at the container centre. The
// mirror flip is applied after the rotation so it always flips the content's
// own horizontal axis.
func (t Transform) CSS() string {
	parts := []string{"translate(-50%, -50%)"}
	if t.Rotate != 0 {
		parts = append(parts, "rotate("+strconv.Itoa(t.Rotate)+"deg)")
	}
	if t.Mirror {
		parts = append(parts, "scaleX(-1)")
	}
	parts = append(parts, "scale("+strconv.FormatFloat(t.Scale, 'f', -1, 64)+")")
	return strings.Join(parts, " ")
}
