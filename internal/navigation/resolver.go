// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package navigation

import "annotadmin/internal/models"

// FolderMap is a Resolver over folders seen so far, keyed by id. Callers
// merge each listing they fetch into it.
type FolderMap map[int64]models.Folder

// Put adds or replaces folders in the map.
func (m FolderMap) Put(folders ...models.Folder) {
	for _, f := range folders {
		m[f.ID] = f
	}
}

// Remove drops a folder from the map. Descendants stay; trails through
// them truncate at the gap.
func (m FolderMap) Remove(id int64) {
	delete(m, id)
}

// Lookup implements Resolver.
func (m FolderMap) Lookup(id int64) (models.Crumb, *int64, bool) {
	f, ok := m[id]
	if !ok {
		return models.Crumb{}, nil, false
	}
	return models.Crumb{ID: f.ID, Name: f.Name}, f.ParentID, true
}

// CategorySource is the part of the taxonomy store that navigation needs.
type CategorySource interface {
	Get(id int64) (models.Category, bool)
}

type categoryResolver struct {
	src CategorySource
}

// CategoryResolver resolves ancestors against the authoritative category
// collection, so a category deleted elsewhere truncates the trail.
func CategoryResolver(src CategorySource) Resolver {
	return categoryResolver{src: src}
}

func (r categoryResolver) Lookup(id int64) (models.Crumb, *int64, bool) {
	c, ok := r.src.Get(id)
	if !ok {
		return models.Crumb{}, nil, false
	}
	return models.Crumb{ID: c.ID, Name: c.Name}, c.ParentID, true
}
