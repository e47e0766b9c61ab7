// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"annotadmin/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, parent_id, description, level, sort_order, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.ParentID, &c.Description,
		&c.StoredLevel, &c.SortOrder, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every category as a flat list ordered by sort_order, then id.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id int64) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category under parentID (nil for a root) and
// returns it. The new category is placed after its existing siblings.
func (s *CategoryStore) Create(name string, description *string, parentID *int64) (*models.Category, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	level := 0
	if parentID != nil {
		var parentLevel int
		err := tx.QueryRow(`SELECT level FROM categories WHERE id = $1`, *parentID).Scan(&parentLevel)
		if err == sql.ErrNoRows {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		level = parentLevel + 1
	}

	if taken, err := siblingNameTaken(tx, name, parentID, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateName
	}

	var next int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories
		WHERE parent_id IS NOT DISTINCT FROM $1`, parentID).Scan(&next); err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}

	row := tx.QueryRow(`
		INSERT INTO categories (name, parent_id, description, level, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		name, parentID, description, level, next,
	)
	c, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if isForeignKeyViolation(err) {
		// The parent was deleted after the lookup above.
		return nil, ErrParentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit category: %w", err)
	}
	return c, nil
}

// Update changes the name and/or description of a category. Nil fields
// are left as they are. Returns nil if the category does not exist.
func (s *CategoryStore) Update(id int64, name, description *string) (*models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanCategory(tx.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category for update: %w", err)
	}

	newName := current.Name
	if name != nil {
		newName = normalizeName(*name)
		if newName == "" {
			return nil, ErrEmptyName
		}
		if newName != current.Name {
			taken, err := siblingNameTaken(tx, newName, current.ParentID, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateName
			}
		}
	}
	newDesc := current.Description
	if description != nil {
		newDesc = description
	}

	row := tx.QueryRow(`
		UPDATE categories SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+categoryColumns,
		newName, newDesc, id,
	)
	c, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit category: %w", err)
	}
	return c, nil
}

// Delete removes a category by ID. Categories that still have
// subcategories are rejected with ErrHasChildren; documents keep their
// row with the category cleared.
//
// The category row is locked before the children are counted, so a
// concurrent Create under it either commits first and is counted, or
// waits and then fails on the missing parent.
func (s *CategoryStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.QueryRow(`SELECT id FROM categories WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock category: %w", err)
	}

	var children int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&children); err != nil {
		return fmt.Errorf("check category children: %w", err)
	}
	if children > 0 {
		return ErrHasChildren
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return ErrHasChildren
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return ErrHasChildren
		}
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Stats returns document and direct subcategory counts for a category.
// Returns nil if the category does not exist.
func (s *CategoryStore) Stats(id int64) (*models.CategoryStats, error) {
	var (
		exists bool
		st     = models.CategoryStats{CategoryID: id}
	)
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1),
		       (SELECT COUNT(*) FROM documents WHERE category_id = $1),
		       (SELECT COUNT(*) FROM categories WHERE parent_id = $1)
	`, id).Scan(&exists, &st.DocumentCount, &st.SubcategoryCount)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return &st, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// siblingNameTaken reports whether another category under parentID
// already uses name. excludeID skips the category being renamed.
func siblingNameTaken(q querier, name string, parentID *int64, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE name = $1 AND parent_id IS NOT DISTINCT FROM $2 AND id <> $3
		)`, name, parentID, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check sibling name: %w", err)
	}
	return taken, nil
}
