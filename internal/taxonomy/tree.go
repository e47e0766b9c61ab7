// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy turns the flat, parent-referencing category collection
// into a navigable tree and keeps that collection consistent with the
// category service. Derived views (trees, indented lists) are recomputed
// from the flat collection on every call and never mutated in place.
package taxonomy

import (
	"fmt"

	"annotadmin/internal/models"
)

// BuildTree converts a flat slice of categories into a forest.
//
// Siblings keep their input order. A category whose parent id does not
// resolve becomes a root. Parent cycles are broken at the member that
// appears first in the input, which is promoted to a root, so every
// distinct id appears exactly once in the result. When an id is repeated
// only its first record is used.
func BuildTree(records []models.Category) []*models.TreeNode {
	nodes := make(map[int64]*models.TreeNode, len(records))
	for _, r := range records {
		if _, dup := nodes[r.ID]; dup {
			continue
		}
		nodes[r.ID] = &models.TreeNode{Category: cloneCategory(r), Children: []*models.TreeNode{}}
	}

	_, breaks := detectCycles(records)

	roots := []*models.TreeNode{}
	placed := make(map[int64]bool, len(nodes))
	for _, r := range records {
		if placed[r.ID] {
			continue
		}
		placed[r.ID] = true
		node := nodes[r.ID]

		if r.ParentID != nil && !breaks[r.ID] {
			if parent, ok := nodes[*r.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Flatten builds the tree for records and returns it as a pre-order,
// depth-annotated list suitable for indented displays.
func Flatten(records []models.Category) []models.FlatEntry {
	return FlattenTree(BuildTree(records))
}

// FlattenTree walks an existing forest in pre-order.
func FlattenTree(roots []*models.TreeNode) []models.FlatEntry {
	flat := []models.FlatEntry{}
	Walk(roots, func(n *models.TreeNode, level int) bool {
		flat = append(flat, models.FlatEntry{Category: cloneCategory(n.Category), Level: level})
		return true
	})
	return flat
}

// Walk visits every node of the forest in pre-order, parents before
// children and siblings in order. Returning false from fn stops the walk.
func Walk(roots []*models.TreeNode, fn func(n *models.TreeNode, level int) bool) {
	walk(roots, 0, fn)
}

func walk(nodes []*models.TreeNode, level int, fn func(*models.TreeNode, int) bool) bool {
	for _, n := range nodes {
		if !fn(n, level) {
			return false
		}
		if !walk(n.Children, level+1, fn) {
			return false
		}
	}
	return true
}

// FindCycles returns every parent cycle in records. Each cycle lists its
// member ids starting with the one BuildTree promotes to a root.
func FindCycles(records []models.Category) [][]int64 {
	cycles, _ := detectCycles(records)
	return cycles
}

// Orphans returns the records whose declared parent is not in records.
func Orphans(records []models.Category) []models.Category {
	ids := make(map[int64]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}
	var out []models.Category
	for _, r := range records {
		if r.ParentID == nil {
			continue
		}
		if _, ok := ids[*r.ParentID]; !ok {
			out = append(out, cloneCategory(r))
		}
	}
	return out
}

// Validate reports ErrMalformedTaxonomy when records contain a parent
// cycle. Orphans are tolerated.
func Validate(records []models.Category) error {
	cycles := FindCycles(records)
	if len(cycles) == 0 {
		return nil
	}
	return fmt.Errorf("%w: parent cycle through categories %v", ErrMalformedTaxonomy, cycles[0])
}

// visit states for detectCycles.
const (
	unvisited = iota
	onPath
	done
)

// detectCycles walks every record's parent chain once. It returns the
// cycles found and the set of ids whose parent link must be ignored to
// turn each cycle into a tree.
func detectCycles(records []models.Category) ([][]int64, map[int64]bool) {
	position := make(map[int64]int, len(records))
	parent := make(map[int64]*int64, len(records))
	for i, r := range records {
		if _, dup := position[r.ID]; dup {
			continue
		}
		position[r.ID] = i
		parent[r.ID] = r.ParentID
	}

	var cycles [][]int64
	breaks := make(map[int64]bool)
	state := make(map[int64]int, len(records))

	for _, r := range records {
		if state[r.ID] != unvisited {
			continue
		}

		var path []int64
		id := r.ID
		for {
			if state[id] == done {
				break
			}
			if state[id] == onPath {
				cycle := cycleFrom(path, id)
				breaker := cycle[0]
				for _, m := range cycle[1:] {
					if position[m] < position[breaker] {
						breaker = m
					}
				}
				breaks[breaker] = true
				cycles = append(cycles, rotate(cycle, breaker))
				break
			}

			state[id] = onPath
			path = append(path, id)

			p := parent[id]
			if p == nil {
				break
			}
			if _, ok := position[*p]; !ok {
				break
			}
			id = *p
		}

		for _, v := range path {
			state[v] = done
		}
	}
	return cycles, breaks
}

// cycleFrom returns the tail of path starting at id.
func cycleFrom(path []int64, id int64) []int64 {
	for i, v := range path {
		if v == id {
			out := make([]int64, len(path)-i)
			copy(out, path[i:])
			return out
		}
	}
	return []int64{id}
}

// rotate reorders a cycle so that it starts at first.
func rotate(cycle []int64, first int64) []int64 {
	for i, v := range cycle {
		if v == first {
			return append(append([]int64{}, cycle[i:]...), cycle[:i]...)
		}
	}
	return cycle
}

// cloneCategory copies c including the values behind its pointer fields,
// so derived views never alias the authoritative collection.
func cloneCategory(c models.Category) models.Category {
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}
	if c.Description != nil {
		d := *c.Description
		c.Description = &d
	}
	return c
}

func cloneCategories(in []models.Category) []models.Category {
	out := make([]models.Category, len(in))
	for i, c := range in {
		out[i] = cloneCategory(c)
	}
	return out
}
