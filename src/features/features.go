// Package features answers named on/off questions for the dispatcher.
package features

import (
	"maps"
	"sync"
)

const (
	PublicElevators             = "PublicElevators"
	PrivateElevators            = "PrivateElevators"
	ServiceElevators            = "ServiceElevators"
	AccessCardRequired          = "AccessCardRequired"
	TimeBasedServiceRestriction = "TimeBasedServiceRestriction"
	DirectionalTimeRestriction  = "DirectionalTimeRestriction"
	CameraSnapshot              = "CameraSnapshot"
)

// Names lists every flag the dispatcher asks about.
var Names = []string{
	PublicElevators,
	PrivateElevators,
	ServiceElevators,
	AccessCardRequired,
	TimeBasedServiceRestriction,
	DirectionalTimeRestriction,
	CameraSnapshot,
}

type Flags interface {
	IsEnabled(name string) bool
}

// Set is an in-memory flag store. Unknown names are disabled.
type Set struct {
	mtx   sync.RWMutex
	flags map[string]bool
}

func NewSet(initial map[string]bool) *Set {
	s := &Set{flags: make(map[string]bool, len(initial))}
	maps.Copy(s.flags, initial)
	return s
}

func (s *Set) IsEnabled(name string) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.flags[name]
}

func (s *Set) Set(name string, enabled bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.flags[name] = enabled
}

// All reports every known flag, including the ones never set.
func (s *Set) All() map[string]bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	out := make(map[string]bool, len(Names))
	for _, name := range Names {
		out[name] = false
	}
	maps.Copy(out, s.flags)
	return out
}
