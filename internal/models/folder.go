// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// Folder is a node in the document storage hierarchy. Path is the
// slash-joined chain of names from the top level ("/contracts/2026").
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Depth     int       `json:"depth"`
	ParentID  *int64    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy *string   `json:"createdBy,omitempty"`
}

// Crumb is one entry of a breadcrumb trail.
type Crumb struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Trail is the ordered ancestor path from the top level to the current
// folder. The synthetic top-level entry is never part of it.
type Trail []Crumb

// Last returns the final crumb of the trail.
func (t Trail) Last() (Crumb, bool) {
	if len(t) == 0 {
		return Crumb{}, false
	}
	return t[len(t)-1], true
}

// String renders the trail as "/a/b/c"; an empty trail is "/".
func (t Trail) String() string {
	if len(t) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, c := range t {
		b.WriteByte('/')
		b.WriteString(c.Name)
	}
	return b.String()
}

// ChildPath joins a parent folder path and a child name.
func ChildPath(parentPath, name string) string {
	if parentPath == "" || parentPath == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(parentPath, "/") + "/" + name
}
