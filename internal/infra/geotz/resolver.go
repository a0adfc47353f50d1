package geotz

import (
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/bradfitz/latlong"
)

// ErrZoneNotFound is returned when no timezone covers the coordinate.
var ErrZoneNotFound = errors.New("timezone not found for coordinates")

// Resolver maps coordinates to their IANA zone and current local hour using
// an offline shapefile lookup.
type Resolver struct {
	lookup func(lat, lon float64) string
	now    func() time.Time

	mu    sync.RWMutex
	zones map[string]*time.Location
}

// NewResolver builds a resolver backed by the embedded zone table.
func NewResolver() *Resolver {
	return &Resolver{
		lookup: latlong.LookupZoneName,
		now:    time.Now,
		zones:  make(map[string]*time.Location),
	}
}

// Location returns the time zone for a coordinate.
func (r *Resolver) Location(lat, lon float64) (*time.Location, error) {
	name := r.lookup(lat, lon)
	if name == "" {
		return nil, ErrZoneNotFound
	}

	r.mu.RLock()
	loc, ok := r.zones[name]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	r.mu.Lock()
	r.zones[name] = loc
	r.mu.Unlock()
	return loc, nil
}

// LocalHour returns the current hour (0..23) at the coordinate.
func (r *Resolver) LocalHour(lat, lon float64) (int, error) {
	loc, err := r.Location(lat, lon)
	if err != nil {
		return 0, err
	}
	return r.now().In(loc).Hour(), nil
}
