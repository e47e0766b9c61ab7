// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category is one flat taxonomy record. The flat collection of categories,
// each pointing at its parent by id, is the source of truth; trees and
// indented lists are derived from it.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ParentID    *int64    `json:"parentId,omitempty"`
	Description *string   `json:"description,omitempty"`
	StoredLevel int       `json:"-"` // depth column kept by the database
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsRoot reports whether the category declares no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// TreeNode is a category with its resolved children. Nodes are rebuilt on
// every derivation and never shared between two builds.
type TreeNode struct {
	Category
	Children []*TreeNode `json:"children"`
}

// FlatEntry is a category annotated with its depth in the tree (root = 0).
type FlatEntry struct {
	Category
	Level int `json:"level"`
}

// CategoryStats summarises usage of a single category.
type CategoryStats struct {
	CategoryID       int64 `json:"categoryId"`
	DocumentCount    int   `json:"documentCount"`
	SubcategoryCount int   `json:"subcategoryCount"`
}

// Int64Ptr returns a pointer to v. Handy for optional parent ids.
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
