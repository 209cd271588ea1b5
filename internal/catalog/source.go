package catalog

import (
	"os"
	"path/filepath"
	"time"
)

// Entry is one directory listing record.
type Entry struct {
	Name      string
	Size      int64
	ModTime   time.Time
	BirthTime time.Time // zero when the platform does not report it
	IsDir     bool
}

// Source produces a directory snapshot.
type Source interface {
	Entries() ([]Entry, error)
}

// DirSource lists a directory on the local filesystem.
type DirSource struct {
	Dir string
}

// Entries implements Source.Entries. Entries whose metadata cannot be read
// are skipped.
func (s DirSource) Entries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		e := Entry{
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   de.IsDir(),
		}
		if !e.IsDir {
			if bt, ok := birthTime(filepath.Join(s.Dir, e.Name)); ok {
				e.BirthTime = bt
			}
		}
		out = append(out, e)
	}
	return out, nil
}
