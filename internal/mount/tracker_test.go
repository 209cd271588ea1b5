package mount

import (
	"testing"

	"kiosk-signage/internal/catalog"
)

func newVideoTracker(mirror bool) *Tracker {
	item := &catalog.MediaItem{ID: "v.mp4", URL: "/media/v.mp4", Kind: catalog.KindVideo}
	return NewTracker(Plan("r1c1", item, Options{Mirror: mirror}))
}

func TestTracker_fades_once(t *testing.T) {
	tr := newVideoTracker(false)

	if tr.Signal("play") {
		t.Error("unrelated event must not fade")
	}
	if !tr.Signal("canplay") {
		t.Error("first readiness event should fade")
	}
	if tr.Signal("loadeddata") {
		t.Error("second readiness event must be ignored")
	}
	if !tr.Faded() {
		t.Error("expected faded state")
	}
}

func TestTracker_resize(t *testing.T) {
	tr := newVideoTracker(true)

	if _, ok := tr.Resize(300, 400); ok {
		t.Error("transform needs intrinsic size first")
	}
	xf, ok := tr.SetIntrinsic(1920, 1080)
	if !ok || xf.Rotate != 90 || !xf.Mirror {
		t.Fatalf("unexpected transform %+v ok=%v", xf, ok)
	}

	again, _ := tr.Resize(300, 400)
	if again != xf {
		t.Errorf("same size should give same transform: %+v vs %+v", again, xf)
	}

	bigger, _ := tr.Resize(600, 800)
	if !almost(bigger.Scale, xf.Scale*2) {
		t.Errorf("scale = %f, want %f", bigger.Scale, xf.Scale*2)
	}
}

func TestTracker_unmount(t *testing.T) {
	tr := newVideoTracker(false)
	tr.SetIntrinsic(720, 1280)
	tr.Resize(300, 400)
	tr.Unmount()

	if _, ok := tr.Resize(600, 800); ok {
		t.Error("resize after unmount must be ignored")
	}
	if tr.Signal("canplay") {
		t.Error("signal after unmount must be ignored")
	}
	cur, ok := tr.Current()
	if !ok || !almost(cur.Scale, 0.4167) {
		t.Errorf("current = %+v ok=%v", cur, ok)
	}
}
