package state

import "sync"

// Location is the user's chosen delivery position plus its human-readable
// label from the reverse geocoder.
type Location struct {
	Lat     float64
	Long    float64
	Address string
}

// LocationContainer holds the session's current location selection.
type LocationContainer struct {
	notifier

	mu  sync.RWMutex
	loc *Location
}

// NewLocationContainer creates an empty location container.
func NewLocationContainer() *LocationContainer {
	return &LocationContainer{}
}

// Location returns the current selection, or nil when none is set.
func (l *LocationContainer) Location() *Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.loc == nil {
		return nil
	}
	loc := *l.loc
	return &loc
}

// Set replaces the current selection.
func (l *LocationContainer) Set(loc Location) {
	l.mu.Lock()
	l.loc = &loc
	l.mu.Unlock()
	l.notify()
}

// Clear drops the current selection.
func (l *LocationContainer) Clear() {
	l.mu.Lock()
	l.loc = nil
	l.mu.Unlock()
	l.notify()
}
