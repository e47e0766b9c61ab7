// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes and helpers for the handler tests.
// The fakes mirror the PostgreSQL stores closely enough to exercise every
// status mapping without a database.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"annotadmin/internal/middleware"
	"annotadmin/internal/models"
	"annotadmin/internal/session"
	"annotadmin/internal/store"
)

var errBoom = errors.New("boom")

// fakeCategories is an in-memory CategoryRepository.
type fakeCategories struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Category
	lists  int
	fail   error
}

func newFakeCategories(items ...models.Category) *fakeCategories {
	f := &fakeCategories{nextID: 100}
	f.items = append(f.items, items...)
	return f
}

func (f *fakeCategories) List() ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]models.Category, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCategories) FindByID(id int64) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) sibling(name string, parentID *int64, exclude int64) bool {
	for _, c := range f.items {
		if c.ID != exclude && c.Name == name && sameParent(c.ParentID, parentID) {
			return true
		}
	}
	return false
}

func (f *fakeCategories) Create(name string, description *string, parentID *int64) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.ErrEmptyName
	}
	level := 0
	if parentID != nil {
		found := false
		for _, c := range f.items {
			if c.ID == *parentID {
				found, level = true, c.StoredLevel+1
			}
		}
		if !found {
			return nil, store.ErrParentNotFound
		}
	}
	if f.sibling(name, parentID, 0) {
		return nil, store.ErrDuplicateName
	}
	f.nextID++
	c := models.Category{ID: f.nextID, Name: name, Description: description, ParentID: parentID, StoredLevel: level}
	f.items = append(f.items, c)
	return &c, nil
}

func (f *fakeCategories) Update(id int64, name, description *string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		c := &f.items[i]
		if c.ID != id {
			continue
		}
		if name != nil {
			if f.sibling(*name, c.ParentID, id) {
				return nil, store.ErrDuplicateName
			}
			c.Name = *name
		}
		if description != nil {
			c.Description = description
		}
		out := *c
		return &out, nil
	}
	return nil, nil
}

func (f *fakeCategories) Delete(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := -1
	for i, c := range f.items {
		if c.ParentID != nil && *c.ParentID == id {
			return store.ErrHasChildren
		}
		if c.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}
	f.items = append(f.items[:idx], f.items[idx+1:]...)
	return nil
}

func (f *fakeCategories) Stats(id int64) (*models.CategoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &models.CategoryStats{CategoryID: id}
	found := false
	for _, c := range f.items {
		if c.ID == id {
			found = true
		}
		if c.ParentID != nil && *c.ParentID == id {
			st.SubcategoryCount++
		}
	}
	if !found {
		return nil, nil
	}
	return st, nil
}

// fakeFolders is an in-memory FolderRepository.
type fakeFolders struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Folder
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{items: map[int64]*models.Folder{}}
}

func (f *fakeFolders) ListChildren(parentID *int64) ([]models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Folder{}
	for _, fl := range f.items {
		if sameParent(fl.ParentID, parentID) {
			out = append(out, *fl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeFolders) FindByID(id int64) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fl, ok := f.items[id]; ok {
		c := *fl
		return &c, nil
	}
	return nil, nil
}

func (f *fakeFolders) Trail(id int64) (models.Trail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var trail models.Trail
	for cur, ok := f.items[id]; ok; {
		trail = append(models.Trail{{ID: cur.ID, Name: cur.Name}}, trail...)
		if cur.ParentID == nil {
			break
		}
		cur, ok = f.items[*cur.ParentID]
	}
	return trail, nil
}

func (f *fakeFolders) Create(name string, parentID *int64, createdBy *string) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parentPath, depth := "/", 0
	if parentID != nil {
		p, ok := f.items[*parentID]
		if !ok {
			return nil, store.ErrParentNotFound
		}
		parentPath, depth = p.Path, p.Depth+1
	}
	for _, fl := range f.items {
		if fl.Name == name && sameParent(fl.ParentID, parentID) {
			return nil, store.ErrDuplicateName
		}
	}
	f.nextID++
	fl := &models.Folder{ID: f.nextID, Name: name, ParentID: parentID, Path: models.ChildPath(parentPath, name), Depth: depth, CreatedBy: createdBy}
	f.items[fl.ID] = fl
	c := *fl
	return &c, nil
}

func (f *fakeFolders) Rename(id int64, name string) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	fl.Name = name
	c := *fl
	return &c, nil
}

func (f *fakeFolders) Move(id int64, newParentID *int64) (*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	for p := newParentID; p != nil; {
		if *p == id {
			return nil, store.ErrInvalidMove
		}
		parent, ok := f.items[*p]
		if !ok {
			return nil, store.ErrParentNotFound
		}
		p = parent.ParentID
	}
	fl.ParentID = newParentID
	c := *fl
	return &c, nil
}

func (f *fakeFolders) Delete(id int64) (int, *models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.items[id]
	if !ok {
		return 0, nil, nil
	}
	n := 0
	for fid, other := range f.items {
		if other.Path == fl.Path || strings.HasPrefix(other.Path, fl.Path+"/") {
			delete(f.items, fid)
			n++
		}
	}
	return n, fl, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// request builds a request with an optional JSON body, chi URL params and
// session.
func request(method, target, body string, sess *session.Data, params ...string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}

// decode unmarshals the recorder body into a generic map.
func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

// testSession returns a fully authenticated session.
func testSession(role models.Role) *session.Data {
	return &session.Data{UserID: 1, Username: "admin", Role: string(role), TwoFADone: true}
}
