package mount

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestComputeTransform(t *testing.T) {
	t.Run("landscape_video_rotates", func(t *testing.T) {
		xf, ok := ComputeTransform(1920, 1080, 300, 400, false)
		if !ok {
			t.Fatal("expected transform")
		}
		if xf.Rotate != 90 {
			t.Errorf("rotate = %d, want 90", xf.Rotate)
		}
		want := math.Max(300.0/1080, 400.0/1920)
		if !almost(xf.Scale, want) || !almost(xf.Scale, 0.2778) {
			t.Errorf("scale = %f, want %f", xf.Scale, want)
		}
	})

	t.Run("portrait_video_upright", func(t *testing.T) {
		xf, ok := ComputeTransform(720, 1280, 300, 400, false)
		if !ok {
			t.Fatal("expected transform")
		}
		if xf.Rotate != 0 {
			t.Errorf("rotate = %d, want 0", xf.Rotate)
		}
		if !almost(xf.Scale, 0.4167) {
			t.Errorf("scale = %f, want ~0.4167", xf.Scale)
		}
	})

	t.Run("square_video_upright", func(t *testing.T) {
		xf, _ := ComputeTransform(500, 500, 300, 400, false)
		if xf.Rotate != 0 || !almost(xf.Scale, 0.8) {
			t.Errorf("got %+v", xf)
		}
	})

	t.Run("unknown_dimensions", func(t *testing.T) {
		cases := [][4]float64{
			{0, 1080, 300, 400},
			{1920, 0, 300, 400},
			{1920, 1080, 0, 400},
			{1920, 1080, 300, -1},
		}
		for _, c := range cases {
			if _, ok := ComputeTransform(c[0], c[1], c[2], c[3], false); ok {
				t.Errorf("ComputeTransform(%v) should not be ready", c)
			}
		}
	})
}

func TestTransform_CSS(t *testing.T) {
	t.Run("rotated_mirrored", func(t *testing.T) {
		xf := Transform{Rotate: 90, Mirror: true, Scale: 0.5}
		want := "translate(-50%, -50%) rotate(90deg) scaleX(-1) scale(0.5)"
		if got := xf.CSS(); got != want {
			t.Errorf("CSS() = %q, want %q", got, want)
		}
	})

	t.Run("plain", func(t *testing.T) {
		xf := Transform{Scale: 1.25}
		want := "translate(-50%, -50%) scale(1.25)"
		if got := xf.CSS(); got != want {
			t.Errorf("CSS() = %q, want %q", got, want)
		}
	})
}
