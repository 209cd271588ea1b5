package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"kiosk-signage/internal/catalog"
	"kiosk-signage/internal/layout"
	"kiosk-signage/internal/mount"
	"kiosk-signage/internal/rotation"
)

const (
	// DefaultInterval is used until a feed provides refreshSeconds.
	DefaultInterval = 60 * time.Second
	// StatusFetchError is shown after a failed fetch.
	StatusFetchError = "Error loading media. Retrying…"
)

// ErrRunning is returned by Start when the loop is already running.
var ErrRunning = errors.New("runner already started")

// Frame is one rendered round.
type Frame struct {
	Round       int
	CenterImage string
	Slots       []mount.Instruction
	// Videos tracks each mounted video by slot until the next frame.
	Videos    map[string]*mount.Tracker
	Available int
	Repeats   int
}

// Renderer presents frames and status lines.
type Renderer interface {
	Render(Frame)
	Status(string)
}

// Options configure a Runner.
type Options struct {
	Slots       []layout.Slot
	Overflow    layout.Overflow
	Policy      rotation.Policy
	Placeholder string
	Interval    time.Duration
	Rand        *rand.Rand
}

// Runner refreshes a display on a schedule. At most one refresh runs at a
// time; a tick that arrives while one is in flight is skipped.
type Runner struct {
	fetcher  Fetcher
	renderer Renderer
	session  *rotation.Session
	opts     Options
	log      *slog.Logger

	refreshMu sync.Mutex

	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	videos   map[string]*mount.Tracker
}

// NewRunner wires a fetcher and renderer into a refresh loop.
func NewRunner(f Fetcher, r Renderer, opts Options, log *slog.Logger) *Runner {
	if len(opts.Slots) == 0 {
		opts.Slots = layout.DefaultSlots
	}
	if opts.Overflow == "" {
		opts.Overflow = layout.OverflowDrop
	}
	if opts.Policy == "" {
		opts.Policy = rotation.PolicyFresh
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		fetcher:  f,
		renderer: r,
		session:  rotation.NewSession(rotation.NewSelector(opts.Policy, opts.Rand)),
		opts:     opts,
		log:      log,
		interval: opts.Interval,
	}
}

// Interval returns the current refresh period.
func (r *Runner) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// Start refreshes once and then on every tick until ctx is done or Stop is
// called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	r.mu.Unlock()

	go r.loop(ctx, done)
	return nil
}

// Stop cancels the loop and waits for it to exit. Mounted videos are
// released.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	r.mu.Lock()
	r.unmountLocked()
	r.mu.Unlock()
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.Refresh(ctx)

	period := r.Interval()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
		if next := r.Interval(); next != period {
			r.log.Info("refresh interval changed", slog.Duration("interval", next))
			period = next
			ticker.Reset(period)
		}
	}
}

// Refresh runs one round. It returns false if another refresh was already
// in flight and this one was skipped.
func (r *Runner) Refresh(ctx context.Context) bool {
	if !r.refreshMu.TryLock() {
		r.log.Debug("refresh in flight, skipping")
		return false
	}
	defer r.refreshMu.Unlock()

	feed, err := r.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		r.log.Warn("feed fetch failed", slog.String("error", err.Error()))
		r.renderer.Status(StatusFetchError)
		return true
	}

	interval := r.Interval()
	if feed.RefreshSeconds > 0 {
		interval = time.Duration(feed.RefreshSeconds) * time.Second
		r.mu.Lock()
		r.interval = interval
		r.mu.Unlock()
	}

	items := make([]catalog.MediaItem, len(feed.Media))
	copy(items, feed.Media)
	catalog.SortNewestFirst(items)

	r.renderer.Status(StatusText(len(items), interval))

	res := r.session.Next(items, len(r.opts.Slots))
	if feed.RequireAtLeast > 0 && res.Available < feed.RequireAtLeast {
		r.log.Warn("catalog below required size",
			slog.Int("available", res.Available), slog.Int("require_at_least", feed.RequireAtLeast))
	}

	cells := layout.Assign(r.opts.Slots, res.Items, r.opts.Overflow)
	slots := mount.PlanAll(cells, mount.Options{Placeholder: r.opts.Placeholder, Mirror: feed.MirrorVideos})

	videos := make(map[string]*mount.Tracker)
	for _, in := range slots {
		if in.Kind == mount.KindVideo {
			videos[in.Slot] = mount.NewTracker(in)
		}
	}
	r.mu.Lock()
	r.unmountLocked()
	r.videos = videos
	r.mu.Unlock()

	r.log.Debug("round rendered",
		slog.Int("round", res.Round), slog.Int("items", len(res.Items)), slog.Int("repeats", res.Repeats))

	r.renderer.Render(Frame{
		Round:       res.Round,
		CenterImage: feed.StaticCenterImage,
		Slots:       slots,
		Videos:      videos,
		Available:   res.Available,
		Repeats:     res.Repeats,
	})
	return true
}

func (r *Runner) unmountLocked() {
	for _, t := range r.videos {
		t.Unmount()
	}
	r.videos = nil
}

// StatusText is the status line shown after a successful fetch.
func StatusText(count int, interval time.Duration) string {
	return fmt.Sprintf("%d media file(s), refresh every %ds", count, int(interval/time.Second))
}
