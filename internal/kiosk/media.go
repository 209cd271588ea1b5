package kiosk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"kiosk-signage/internal/catalog"
)

var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

// videoTypes covers extensions the mime package only knows from system
// tables.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".ogg":  "video/ogg",
}

// errBadName rejects media names that are hidden or escape the directory.
var errBadName = errors.New("invalid media name")

// MediaFiles resolves media names to files on disk.
type MediaFiles struct {
	Dir        string
	Classifier *catalog.Classifier
	// CenterImage is the banner file served at CenterImagePath, if any.
	CenterImage string
}

// Resolve returns the path of a servable media file named name.
func (m MediaFiles) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || catalog.Hidden(name) {
		return "", errBadName
	}
	if m.Classifier != nil && m.Classifier.Classify(name) == catalog.KindUnknown {
		return "", errBadName
	}
	return filepath.Join(m.Dir, name), nil
}

// byteRange is an inclusive span of a file.
type byteRange struct {
	start, end int64
}

// parseRange interprets a single "bytes=start-end" or "bytes=start-" header
// against a file of size total. ok is false for a missing or malformed
// header, which means serve the whole file. satisfiable is false when the
// span does not fit the file.
func parseRange(header string, total int64) (r byteRange, ok, satisfiable bool) {
	m := rangePattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return byteRange{}, false, false
	}
	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return byteRange{}, false, false
	}
	end := total - 1
	if m[2] != "" {
		if end, err = strconv.ParseInt(m[2], 10, 64); err != nil {
			return byteRange{}, false, false
		}
	}
	if start >= total || end >= total || end < start {
		return byteRange{}, true, false
	}
	return byteRange{start: start, end: end}, true, true
}

// serveFile writes path with single byte-range support and no caching. It
// returns the number of body bytes written.
func serveFile(w http.ResponseWriter, r *http.Request, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fs.ErrNotExist
	}
	total := info.Size()

	ext := strings.ToLower(filepath.Ext(path))
	ctype, ok := videoTypes[ext]
	if !ok {
		ctype = mime.TypeByExtension(ext)
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-store")
	h.Set("Content-Type", ctype)

	rng, ranged, ok := parseRange(r.Header.Get("Range"), total)
	switch {
	case ranged && !ok:
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", total))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return 0, nil
	case ranged:
		length := rng.end - rng.start + 1
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, total))
		h.Set("Content-Length", strconv.FormatInt(length, 10))
		w.WriteHeader(http.StatusPartialContent)
		if r.Method == http.MethodHead {
			return 0, nil
		}
		if _, err := f.Seek(rng.start, io.SeekStart); err != nil {
			return 0, err
		}
		return io.CopyN(w, f, length)
	default:
		h.Set("Content-Length", strconv.FormatInt(total, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return 0, nil
		}
		return io.Copy(w, f)
	}
}
