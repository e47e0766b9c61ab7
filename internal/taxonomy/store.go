// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"annotadmin/internal/models"
)

// Service is the remote category service the Store mediates.
type Service interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, in CreateInput) (*models.Category, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// CreateInput is the payload for creating a category.
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ParentID    *int64  `json:"parentId,omitempty"`
}

// UpdateInput carries the fields to change; nil fields are left alone.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Result is the outcome of a store operation. Err is nil on success.
// Stale is set when the service call succeeded but a newer call for the
// same resource had already been applied, so this response was discarded.
// A created record missing from a newer fetch is still added, so a stale
// Create always means the collection already reflects the new category.
type Result[T any] struct {
	Value T
	Err   error
	Stale bool
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Message returns the user-facing error text, or "" on success.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Store owns the authoritative flat category collection and keeps it in
// step with confirmed service responses. State changes only after a
// successful response; nothing is applied optimistically.
//
// Every call takes a sequence token when it is invoked. A response is
// applied only if nothing newer for the same category (or a newer full
// fetch) has already been applied; otherwise it is discarded as stale.
// Create is the exception for fetches: a confirmed record absent from
// the newer list is appended rather than lost.
type Store struct {
	svc      Service
	notifier Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	categories []models.Category
	inflight   int

	seq          uint64
	fetchApplied uint64           // token of the last applied Fetch
	lastMutation uint64           // highest token of any applied per-id change
	applied      map[int64]uint64 // per-id token of the last applied change
}

// NewStore returns an empty Store backed by svc.
func NewStore(svc Service, opts ...Option) *Store {
	s := &Store{
		svc:        svc,
		logger:     slog.Default(),
		categories: []models.Category{},
		applied:    make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = logNotifier{logger: s.logger}
	}
	return s
}

// Categories returns a copy of the flat collection in its current order.
func (s *Store) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCategories(s.categories)
}

// Tree derives the category forest from the current collection.
func (s *Store) Tree() []*models.TreeNode {
	return BuildTree(s.Categories())
}

// Flat derives the indented pre-order list from the current collection.
func (s *Store) Flat() []models.FlatEntry {
	return Flatten(s.Categories())
}

// Loading reports whether any service call is in flight. It is a busy
// indicator for the UI, not a lock.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Get returns the first category with the given id.
func (s *Store) Get(id int64) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneCategory(s.categories[i]), true
	}
	return models.Category{}, false
}

// Fetch replaces the collection with the service's current list.
func (s *Store) Fetch(ctx context.Context) Result[[]models.Category] {
	token := s.begin()
	defer s.end()

	list, err := s.svc.List(ctx)
	if err != nil {
		return failed[[]models.Category](s, newServiceError("fetch", msgFetchFailed, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := cloneCategories(list)
	if s.fetchApplied > token || s.lastMutation > token {
		s.logger.Debug("discarding stale category list", "token", token)
		return Result[[]models.Category]{Value: out, Stale: true}
	}
	s.categories = cloneCategories(list)
	s.fetchApplied = token
	return Result[[]models.Category]{Value: out}
}

// Create asks the service for a new category and appends the confirmed
// record, so it becomes the last root or the last child of its parent.
func (s *Store) Create(ctx context.Context, name string, description *string, parentID *int64) Result[*models.Category] {
	if strings.TrimSpace(name) == "" {
		return failed[*models.Category](s, ErrEmptyName)
	}

	token := s.begin()
	defer s.end()

	created, err := s.svc.Create(ctx, CreateInput{Name: name, Description: description, ParentID: parentID})
	if err == nil && created == nil {
		err = errors.New("empty response from category service")
	}
	if err != nil {
		return failed[*models.Category](s, newServiceError("create", msgCreateFailed, err))
	}

	rec := cloneCategory(*created)
	s.mu.Lock()
	// A fetch that resolved first may have been read before this record
	// existed. The confirmed record is kept unless that fetch already
	// holds it or a newer change to the id was applied.
	if s.applied[rec.ID] > token || (s.fetchApplied > token && s.indexOf(rec.ID) >= 0) {
		s.mu.Unlock()
		return Result[*models.Category]{Value: &rec, Stale: true}
	}
	if i := s.indexOf(rec.ID); i >= 0 {
		s.categories[i] = cloneCategory(rec)
	} else {
		s.categories = append(s.categories, cloneCategory(rec))
	}
	s.markApplied(rec.ID, token)
	s.mu.Unlock()

	s.notifier.Success("category created")
	return Result[*models.Category]{Value: &rec}
}

// Update sends a partial change for an existing category and replaces
// the local entry in place with the server's full record.
func (s *Store) Update(ctx context.Context, id int64, in UpdateInput) Result[*models.Category] {
	if _, ok := s.Get(id); !ok {
		return failed[*models.Category](s, fmt.Errorf("%w: %d", ErrUnknownCategory, id))
	}

	token := s.begin()
	defer s.end()

	updated, err := s.svc.Update(ctx, id, in)
	if err == nil && updated == nil {
		err = errors.New("empty response from category service")
	}
	if err != nil {
		return failed[*models.Category](s, newServiceError("update", msgUpdateFailed, err))
	}

	rec := cloneCategory(*updated)
	s.mu.Lock()
	if s.superseded(id, token) {
		s.mu.Unlock()
		return Result[*models.Category]{Value: &rec, Stale: true}
	}
	if i := s.indexOf(id); i >= 0 {
		s.categories[i] = cloneCategory(rec)
	}
	s.markApplied(id, token)
	s.mu.Unlock()

	s.notifier.Success("category updated")
	return Result[*models.Category]{Value: &rec}
}

// Delete removes a category. Every local entry with the id is dropped;
// deleting an id that is not present succeeds silently. Descendants are
// kept and surface as roots on the next derivation.
func (s *Store) Delete(ctx context.Context, id int64) Result[struct{}] {
	token := s.begin()
	defer s.end()

	if err := s.svc.Delete(ctx, id); err != nil {
		return failed[struct{}](s, newServiceError("delete", msgDeleteFailed, err))
	}

	s.mu.Lock()
	if s.superseded(id, token) {
		s.mu.Unlock()
		return Result[struct{}]{Stale: true}
	}
	kept := s.categories[:0:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	s.markApplied(id, token)
	s.mu.Unlock()

	s.notifier.Success("category deleted")
	return Result[struct{}]{}
}

// begin allocates a sequence token and marks a call in flight.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.inflight++
	return s.seq
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

// superseded reports whether a change to id made with token is older
// than something already applied. Caller holds s.mu.
func (s *Store) superseded(id int64, token uint64) bool {
	return s.applied[id] > token || s.fetchApplied > token
}

// markApplied records token as the latest change to id. Caller holds s.mu.
func (s *Store) markApplied(id int64, token uint64) {
	s.applied[id] = token
	if token > s.lastMutation {
		s.lastMutation = token
	}
}

// indexOf returns the position of the first entry with id, or -1.
// Caller holds s.mu.
func (s *Store) indexOf(id int64) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

// failed reports err through the notifier and wraps it in a Result.
func failed[T any](s *Store, err error) Result[T] {
	s.logger.Debug("category operation failed", "error", err)
	s.notifier.Failure(err.Error())
	var zero T
	return Result[T]{Value: zero, Err: err}
}
