package kiosk

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"kiosk-signage/internal/catalog"
	"kiosk-signage/internal/display"
	"kiosk-signage/internal/layout"
	"kiosk-signage/internal/mount"
	"kiosk-signage/internal/rotation"
)

const (
	// DefaultRefreshSeconds is the display refresh period when none is set.
	DefaultRefreshSeconds = 60
	// CenterImagePath serves a configured centre banner file.
	CenterImagePath = "/center-image"
	// debugFeedLimit caps the media list of a ?debug=1 feed.
	debugFeedLimit = 20
	// maxIDAttempts bounds retries on a session id collision.
	maxIDAttempts = 3
)

// Options configure the rounds a Service produces.
type Options struct {
	RefreshSeconds int
	MirrorVideos   bool
	RequireAtLeast int
	// CenterImage enables CenterImagePath; empty shows the placeholder.
	CenterImage string
	Strategy    catalog.Strategy
	Policy      rotation.Policy
	Slots       []layout.Slot
	Overflow    layout.Overflow
	// SessionTTL evicts sessions idle for longer. Zero means ten refresh
	// periods.
	SessionTTL time.Duration
	// NewRand returns the random source of a new session; nil seeds each
	// session randomly.
	NewRand func() *rand.Rand
}

// Service builds feeds and rounds and delegates session storage to a
// Repository.
type Service struct {
	repo   Repository
	lister catalog.Lister
	opts   Options
	now    func() time.Time
	newID  func() string
}

// NewService returns a Service reading the catalog from lister.
func NewService(repo Repository, lister catalog.Lister, opts Options) *Service {
	if opts.RefreshSeconds <= 0 {
		opts.RefreshSeconds = DefaultRefreshSeconds
	}
	if opts.Strategy == "" {
		opts.Strategy = catalog.StrategyBirthTime
	}
	if opts.Policy == "" {
		opts.Policy = rotation.PolicyFresh
	}
	if len(opts.Slots) == 0 {
		opts.Slots = layout.DefaultSlots
	}
	if opts.Overflow == "" {
		opts.Overflow = layout.OverflowDrop
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 10 * time.Duration(opts.RefreshSeconds) * time.Second
	}
	return &Service{
		repo:   repo,
		lister: lister,
		opts:   opts,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RequireAtLeast is the catalog size below which a display is underfilled.
func (s *Service) RequireAtLeast() int {
	return s.opts.RequireAtLeast
}

// CenterImageURL returns the URL of the static centre banner.
func (s *Service) CenterImageURL() string {
	if s.opts.CenterImage != "" {
		return CenterImagePath
	}
	return mount.DefaultPlaceholder
}

// Feed returns the current catalog with display settings. With debug set the
// media list is capped at 20 entries; Count still reports the full size.
func (s *Service) Feed(debug bool) catalog.Feed {
	items := s.lister.List()
	media := items
	if debug && len(media) > debugFeedLimit {
		media = media[:debugFeedLimit]
	}
	return catalog.Feed{
		OK:                true,
		Count:             len(items),
		RefreshSeconds:    s.opts.RefreshSeconds,
		MirrorVideos:      s.opts.MirrorVideos,
		RequireAtLeast:    s.opts.RequireAtLeast,
		StaticCenterImage: s.CenterImageURL(),
		RecentStrategy:    string(s.opts.Strategy),
		Media:             media,
	}
}

// CreateSession starts a display session after evicting idle ones. It
// returns the new session and how many sessions were evicted.
func (s *Service) CreateSession() (SessionCreated, int, error) {
	now := s.now()
	evicted := s.repo.PruneIdle(now.Add(-s.opts.SessionTTL))

	var rng *rand.Rand
	if s.opts.NewRand != nil {
		rng = s.opts.NewRand()
	}
	rot := rotation.NewSession(rotation.NewSelector(s.opts.Policy, rng))

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := SessionID(s.newID())
		err := s.repo.Create(id, rot, now)
		if err == nil {
			return SessionCreated{Session: id, RefreshSeconds: s.opts.RefreshSeconds}, evicted, nil
		}
		if !errors.Is(err, ErrSessionExists) {
			return SessionCreated{}, evicted, err
		}
	}
	return SessionCreated{}, evicted, ErrSessionExists
}

// NextRound picks, lays out and plans the next round for a session.
func (s *Service) NextRound(id SessionID) (Round, rotation.Result, error) {
	rot, ok := s.repo.Touch(id, s.now())
	if !ok {
		return Round{}, rotation.Result{}, ErrSessionNotFound
	}

	items := s.lister.List()
	res := rot.Next(items, len(s.opts.Slots))
	cells := layout.Assign(s.opts.Slots, res.Items, s.opts.Overflow)
	refresh := time.Duration(s.opts.RefreshSeconds) * time.Second

	return Round{
		Session:        id,
		Round:          res.Round,
		CenterImage:    s.CenterImageURL(),
		Status:         display.StatusText(len(items), refresh),
		RefreshSeconds: s.opts.RefreshSeconds,
		Available:      res.Available,
		Slots: mount.PlanAll(cells, mount.Options{
			Placeholder: mount.DefaultPlaceholder,
			Mirror:      s.opts.MirrorVideos,
		}),
	}, res, nil
}

// EndSession drops a session. Ending an unknown session is not an error.
func (s *Service) EndSession(id SessionID) bool {
	return s.repo.End(id)
}

// ActiveSessionCount returns the number of live sessions.
func (s *Service) ActiveSessionCount() int {
	return s.repo.ActiveSessionCount()
}
