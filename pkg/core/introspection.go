package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState reports the storage behind a Service and its note traffic.
type ServiceState struct {
	RepositoryType string `json:"repository_type"`
	// Capabilities lists the optional ports the repository implements:
	// "recency", "watch", "versioned", "match".
	Capabilities []string `json:"capabilities,omitempty"`
	Saves        int      `json:"saves"`
	Reads        int      `json:"reads"`
	Misses       int      `json:"misses"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := ServiceState{
		RepositoryType: "none",
		Saves:          s.saves,
		Reads:          s.reads,
		Misses:         s.misses,
	}
	if s.repo == nil {
		return st
	}
	st.RepositoryType = "repository"
	if comp, ok := s.repo.(introspection.Component); ok {
		st.RepositoryType = comp.ComponentType()
	}
	if _, ok := s.repo.(Recency); ok {
		st.Capabilities = append(st.Capabilities, "recency")
	}
	if _, ok := s.repo.(Watchable); ok {
		st.Capabilities = append(st.Capabilities, "watch")
	}
	if _, ok := s.repo.(Versioned); ok {
		st.Capabilities = append(st.Capabilities, "versioned")
	}
	if _, ok := s.repo.(Matcher); ok {
		st.Capabilities = append(st.Capabilities, "match")
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "note-service"
}

var (
	_ introspection.Introspectable = (*Service)(nil)
	_ introspection.Component      = (*Service)(nil)
)
