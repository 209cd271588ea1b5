// Package kiosk serves the signage HTTP surface: the catalog feed, display
// sessions that pick rounds server-side, media bytes and the browser adapter.
package kiosk

import (
	"time"

	"kiosk-signage/internal/mount"
	"kiosk-signage/internal/rotation"
)

// SessionID identifies one display client.
type SessionID string

// SessionState is the in-memory state of a display session.
type SessionState struct {
	ID       SessionID
	Rotation *rotation.Session
	Created  time.Time
	LastSeen time.Time
}

// Round is the render plan returned to a display for one refresh.
type Round struct {
	Session        SessionID           `json:"session"`
	Round          int                 `json:"round"`
	CenterImage    string              `json:"centerImage"`
	Status         string              `json:"status"`
	RefreshSeconds int                 `json:"refreshSeconds"`
	Available      int                 `json:"available"`
	Slots          []mount.Instruction `json:"slots"`
}

// SessionCreated is the body of a successful session creation.
type SessionCreated struct {
	Session        SessionID `json:"session"`
	RefreshSeconds int       `json:"refreshSeconds"`
}
