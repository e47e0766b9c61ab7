// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package navigation tracks where a user is in the folder hierarchy: the
// current folder, the breadcrumb trail leading to it, and a back/forward
// history of visited locations.
package navigation

import (
	"sync"

	"annotadmin/internal/models"
)

// Resolver looks up a folder by id, returning its crumb and parent id.
// ok is false when the folder is unknown.
type Resolver interface {
	Lookup(id int64) (crumb models.Crumb, parentID *int64, ok bool)
}

// State is the navigation state machine. The zero location (Current()
// returns nil) is the top level; any other location is a folder together
// with the trail that leads to it.
type State struct {
	mu       sync.Mutex
	resolver Resolver

	current *int64
	trail   models.Trail

	history []*int64
	index   int
}

// New returns a State at the top level.
func New(resolver Resolver) *State {
	return &State{
		resolver: resolver,
		trail:    models.Trail{},
		history:  []*int64{nil},
	}
}

// SetResolver swaps the resolver, for example after a refresh of the
// folder listing. The current trail is left as is.
func (s *State) SetResolver(r Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = r
}

// Current returns the current folder id, or nil at the top level.
func (s *State) Current() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyID(s.current)
}

// AtRoot reports whether the state is at the top level.
func (s *State) AtRoot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == nil
}

// Trail returns a copy of the breadcrumb trail.
func (s *State) Trail() models.Trail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(models.Trail{}, s.trail...)
}

// SelectFolder moves to id, recomputing the trail by walking parent links.
// A nil id returns to the top level. The new location is pushed onto the
// history, dropping anything ahead of the current position.
func (s *State) SelectFolder(id *int64) models.Trail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(id, s.resolve(id))
	s.push(id)
	return append(models.Trail{}, s.trail...)
}

// SelectFolderWithTrail moves to id using a trail supplied by the caller,
// typically one computed by the server.
func (s *State) SelectFolderWithTrail(id *int64, trail models.Trail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		trail = nil
	}
	s.moveTo(id, append(models.Trail{}, trail...))
	s.push(id)
}

// GoUp moves to the parent of the current folder. It is a no-op that
// returns false when the trail is empty.
func (s *State) GoUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.trail)
	if n == 0 {
		return false
	}
	var parent *int64
	if n > 1 {
		parent = copyID(&s.trail[n-2].ID)
	}
	s.moveTo(parent, s.trail[:n-1:n-1])
	s.push(parent)
	return true
}

// CanGoBack reports whether Back would move.
func (s *State) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

// CanGoForward reports whether Forward would move.
func (s *State) CanGoForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index < len(s.history)-1
}

// Back returns to the previous location in the history.
func (s *State) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return false
	}
	s.index--
	id := s.history[s.index]
	s.moveTo(id, s.resolve(id))
	return true
}

// Forward re-visits the location that Back left.
func (s *State) Forward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.history)-1 {
		return false
	}
	s.index++
	id := s.history[s.index]
	s.moveTo(id, s.resolve(id))
	return true
}

// resolve walks parent links up from id and returns the trail in
// top-to-target order. The walk stops at an unknown ancestor, keeping
// the crumbs already collected, and never visits a folder twice.
// Caller holds s.mu.
func (s *State) resolve(id *int64) models.Trail {
	trail := models.Trail{}
	if id == nil || s.resolver == nil {
		return trail
	}

	visited := make(map[int64]bool)
	next := id
	for next != nil && !visited[*next] {
		visited[*next] = true
		crumb, parent, ok := s.resolver.Lookup(*next)
		if !ok {
			break
		}
		trail = append(trail, crumb)
		next = parent
	}

	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}
	return trail
}

func (s *State) moveTo(id *int64, trail models.Trail) {
	s.current = copyID(id)
	if trail == nil {
		trail = models.Trail{}
	}
	s.trail = trail
}

func (s *State) push(id *int64) {
	s.history = append(s.history[:s.index+1], copyID(id))
	s.index = len(s.history) - 1
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
