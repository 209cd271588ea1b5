package catalog

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
)

// DefaultURLPrefix is the path under which media bytes are served.
const DefaultURLPrefix = "/media"

// Options configures a Provider.
type Options struct {
	ImageExtensions []string
	VideoExtensions []string
	Strategy        Strategy
	URLPrefix       string
}

// Provider turns a directory snapshot into an ordered catalog.
type Provider struct {
	src        Source
	classifier *Classifier
	strategy   Strategy
	urlPrefix  string
	log        *slog.Logger
	onScan     func(items int)
}

// NewProvider returns a Provider reading from src. A zero Strategy selects
// StrategyBirthTime and an empty URLPrefix selects DefaultURLPrefix.
func NewProvider(src Source, opts Options, log *slog.Logger) *Provider {
	if opts.Strategy == "" {
		opts.Strategy = StrategyBirthTime
	}
	if opts.URLPrefix == "" {
		opts.URLPrefix = DefaultURLPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		src:        src,
		classifier: NewClassifier(opts.ImageExtensions, opts.VideoExtensions),
		strategy:   opts.Strategy,
		urlPrefix:  strings.TrimSuffix(opts.URLPrefix, "/"),
		log:        log,
	}
}

// Strategy returns the sort key strategy in use.
func (p *Provider) Strategy() Strategy {
	return p.strategy
}

// OnScan registers fn to run after every directory scan. Register before
// the provider is shared between goroutines.
func (p *Provider) OnScan(fn func(items int)) {
	p.onScan = fn
}

// Classifier returns the extension classifier in use.
func (p *Provider) Classifier() *Classifier {
	return p.classifier
}

// List implements Lister. A missing or unreadable directory yields an empty
// catalog so the display falls back to placeholders.
func (p *Provider) List() []MediaItem {
	entries, err := p.src.Entries()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.log.Warn("media directory missing", slog.String("error", err.Error()))
		} else {
			p.log.Error("media directory unreadable", slog.String("error", err.Error()))
		}
		if p.onScan != nil {
			p.onScan(0)
		}
		return []MediaItem{}
	}

	items := make([]MediaItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir || Hidden(e.Name) {
			continue
		}
		kind := p.classifier.Classify(e.Name)
		if kind == KindUnknown {
			continue
		}
		items = append(items, MediaItem{
			ID:       e.Name,
			Filename: e.Name,
			URL:      p.urlPrefix + "/" + url.PathEscape(e.Name),
			Kind:     kind,
			SortKey:  SortKey(p.strategy, e),
			MtimeMs:  millis(e.ModTime),
			Size:     e.Size,
		})
	}

	SortNewestFirst(items)
	p.log.Debug("catalog scanned", slog.Int("items", len(items)), slog.Int("entries", len(entries)))
	if p.onScan != nil {
		p.onScan(len(items))
	}
	return items
}
