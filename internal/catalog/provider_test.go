package catalog

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSource struct {
	entries []Entry
	err     error
}

func (f fakeSource) Entries() ([]Entry, error) { return f.entries, f.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestProvider_List_filters_and_classifies(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := fakeSource{entries: []Entry{
		{Name: "a.mp4", ModTime: base.Add(1 * time.Minute)},
		{Name: "b.PNG", ModTime: base.Add(2 * time.Minute)},
		{Name: "notes.txt", ModTime: base.Add(3 * time.Minute)},
		{Name: ".hidden.mp4", ModTime: base.Add(4 * time.Minute)},
		{Name: "sub", IsDir: true, ModTime: base.Add(5 * time.Minute)},
	}}
	p := NewProvider(src, Options{Strategy: StrategyMTime}, quietLogger())

	got := p.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(got), got)
	}
	if got[0].ID != "b.PNG" || got[0].Kind != KindImage {
		t.Errorf("first item: got %+v", got[0])
	}
	if got[1].ID != "a.mp4" || got[1].Kind != KindVideo {
		t.Errorf("second item: got %+v", got[1])
	}
	if got[1].URL != "/media/a.mp4" {
		t.Errorf("url: got %q", got[1].URL)
	}
}

func TestProvider_List_escapes_url(t *testing.T) {
	src := fakeSource{entries: []Entry{{Name: "Proto Video #1.mp4"}}}
	p := NewProvider(src, Options{URLPrefix: "/media/"}, quietLogger())

	got := p.List()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].URL != "/media/Proto%20Video%20%231.mp4" {
		t.Errorf("url: got %q", got[0].URL)
	}
	if got[0].ID != "Proto Video #1.mp4" {
		t.Errorf("id should be the raw filename, got %q", got[0].ID)
	}
}

func TestProvider_List_missing_directory(t *testing.T) {
	p := NewProvider(DirSource{Dir: filepath.Join(t.TempDir(), "nope")}, Options{}, quietLogger())

	got := p.List()
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil catalog, got %#v", got)
	}
}

func TestProvider_List_source_error(t *testing.T) {
	p := NewProvider(fakeSource{err: errors.New("boom")}, Options{}, quietLogger())
	if got := p.List(); len(got) != 0 {
		t.Errorf("expected empty catalog on error, got %d", len(got))
	}
	p = NewProvider(fakeSource{err: fs.ErrPermission}, Options{}, quietLogger())
	if got := p.List(); len(got) != 0 {
		t.Errorf("expected empty catalog on permission error, got %d", len(got))
	}
}

func TestProvider_List_filename_numeric(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := fakeSource{entries: []Entry{
		{Name: "clip_000042.mp4", ModTime: base},
		{Name: "clip_7.mp4", ModTime: base},
		{Name: "banner.png", ModTime: base},
	}}
	p := NewProvider(src, Options{Strategy: StrategyFilenameNumeric}, quietLogger())

	got := p.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	// banner.png falls back to its timestamp, which dwarfs the numeric keys.
	if got[0].ID != "banner.png" {
		t.Errorf("expected timestamp-keyed banner first, got %s", got[0].ID)
	}
	if got[1].ID != "clip_000042.mp4" || got[1].SortKey != 42 {
		t.Errorf("expected clip_000042 with key 42, got %+v", got[1])
	}
	if got[2].ID != "clip_7.mp4" || got[2].SortKey != 7 {
		t.Errorf("expected clip_7 with key 7, got %+v", got[2])
	}
}

func TestDirSource_Entries_with_mtime_order(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	files := []string{"old.jpg", "mid.webm", "new.mov", "readme.md"}
	for i, f := range files {
		path := filepath.Join(dir, f)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(DirSource{Dir: dir}, Options{Strategy: StrategyMTime}, quietLogger())
	got := p.List()

	want := []string{"new.mov", "mid.webm", "old.jpg"}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], got[i].ID)
		}
		if got[i].Size != 1 {
			t.Errorf("index %d: expected size 1, got %d", i, got[i].Size)
		}
	}
}

func TestProvider_OnScan(t *testing.T) {
	src := fakeSource{entries: []Entry{
		{Name: "a.jpg"}, {Name: "b.mp4"}, {Name: "notes.txt"},
	}}
	p := NewProvider(src, Options{}, quietLogger())

	var scans []int
	p.OnScan(func(items int) { scans = append(scans, items) })
	p.List()
	p.List()

	if len(scans) != 2 || scans[0] != 2 {
		t.Errorf("scans = %v, want [2 2]", scans)
	}
}
