// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"annotadmin/internal/models"
)

// maxTrailDepth bounds the ancestor walk so a corrupted parent chain
// cannot loop forever.
const maxTrailDepth = 256

// FolderStore manages the folder hierarchy. Every folder stores its full
// path and depth, which are rewritten for the whole subtree on rename
// and move.
type FolderStore struct {
	db *sql.DB
}

// NewFolderStore returns a new FolderStore.
func NewFolderStore(db *sql.DB) *FolderStore {
	return &FolderStore{db: db}
}

const folderColumns = `id, name, path, depth, parent_id, created_at, created_by`

func scanFolder(scanner interface{ Scan(...any) error }) (*models.Folder, error) {
	var f models.Folder
	err := scanner.Scan(&f.ID, &f.Name, &f.Path, &f.Depth, &f.ParentID, &f.CreatedAt, &f.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListChildren returns the folders directly under parentID, sorted by
// name. A nil parentID lists the top level.
func (s *FolderStore) ListChildren(parentID *int64) ([]models.Folder, error) {
	rows, err := s.db.Query(`
		SELECT `+folderColumns+` FROM folders
		WHERE parent_id IS NOT DISTINCT FROM $1
		ORDER BY name, id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	items := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// FindByID retrieves a folder by ID. Returns nil if not found.
func (s *FolderStore) FindByID(id int64) (*models.Folder, error) {
	f, err := scanFolder(s.db.QueryRow(`SELECT `+folderColumns+` FROM folders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder by id: %w", err)
	}
	return f, nil
}

// Trail returns the breadcrumb trail from the top level down to id.
// Returns nil if the folder does not exist.
func (s *FolderStore) Trail(id int64) (models.Trail, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE chain AS (
			SELECT id, name, parent_id, 0 AS hops FROM folders WHERE id = $1
			UNION ALL
			SELECT f.id, f.name, f.parent_id, c.hops + 1
			FROM folders f JOIN chain c ON f.id = c.parent_id
			WHERE c.hops < $2
		)
		SELECT id, name FROM chain ORDER BY hops DESC`, id, maxTrailDepth)
	if err != nil {
		return nil, fmt.Errorf("folder trail: %w", err)
	}
	defer rows.Close()

	var trail models.Trail
	for rows.Next() {
		var c models.Crumb
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan crumb: %w", err)
		}
		trail = append(trail, c)
	}
	return trail, rows.Err()
}

// Create makes a folder named name under parentID (nil for the top level).
func (s *FolderStore) Create(name string, parentID *int64, createdBy *string) (*models.Folder, error) {
	name, err := cleanFolderName(name)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	parentPath, depth := "/", 0
	if parentID != nil {
		parent, err := findFolderTx(tx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		parentPath, depth = parent.Path, parent.Depth+1
	}

	if taken, err := folderNameTaken(tx, name, parentID, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateName
	}

	f, err := scanFolder(tx.QueryRow(`
		INSERT INTO folders (name, path, depth, parent_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+folderColumns,
		name, models.ChildPath(parentPath, name), depth, parentID, createdBy,
	))
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit folder: %w", err)
	}
	return f, nil
}

// Rename changes a folder's name and rewrites the paths of its subtree.
// Returns nil if the folder does not exist.
func (s *FolderStore) Rename(id int64, name string) (*models.Folder, error) {
	name, err := cleanFolderName(name)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	f, err := findFolderTx(tx, id)
	if err != nil || f == nil {
		return nil, err
	}
	if f.Name == name {
		return f, nil
	}

	if taken, err := folderNameTaken(tx, name, f.ParentID, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateName
	}

	newPath := models.ChildPath(parentPathOf(f.Path), name)
	if err := relocateSubtree(tx, f, name, newPath, f.ParentID, 0); err != nil {
		return nil, err
	}

	updated, err := findFolderTx(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rename: %w", err)
	}
	return updated, nil
}

// Move re-parents a folder under newParentID (nil for the top level).
// Moving a folder into itself or one of its descendants fails with
// ErrInvalidMove. Returns nil if the folder does not exist.
func (s *FolderStore) Move(id int64, newParentID *int64) (*models.Folder, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	f, err := findFolderTx(tx, id)
	if err != nil || f == nil {
		return nil, err
	}

	parentPath, depth := "/", 0
	if newParentID != nil {
		if *newParentID == id {
			return nil, ErrInvalidMove
		}
		parent, err := findFolderTx(tx, *newParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		if isWithin(parent.Path, f.Path) {
			return nil, ErrInvalidMove
		}
		parentPath, depth = parent.Path, parent.Depth+1
	}

	if samePtr(f.ParentID, newParentID) {
		return f, nil
	}

	if taken, err := folderNameTaken(tx, f.Name, newParentID, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateName
	}

	newPath := models.ChildPath(parentPath, f.Name)
	if err := relocateSubtree(tx, f, f.Name, newPath, newParentID, depth-f.Depth); err != nil {
		return nil, err
	}

	moved, err := findFolderTx(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit move: %w", err)
	}
	return moved, nil
}

// Delete removes a folder together with its whole subtree and returns the
// number of folders removed and the deleted folder. Returns (0, nil, nil)
// if the folder does not exist.
func (s *FolderStore) Delete(id int64) (int, *models.Folder, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	f, err := findFolderTx(tx, id)
	if err != nil || f == nil {
		return 0, nil, err
	}

	var descendants int
	if err := tx.QueryRow(`
		SELECT COUNT(*) FROM folders WHERE left(path, length($1) + 1) = $1 || '/'`,
		f.Path).Scan(&descendants); err != nil {
		return 0, nil, fmt.Errorf("count folder subtree: %w", err)
	}

	// Children go with the parent through ON DELETE CASCADE.
	if _, err := tx.Exec(`DELETE FROM folders WHERE id = $1`, id); err != nil {
		return 0, nil, fmt.Errorf("delete folder: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit delete: %w", err)
	}
	return descendants + 1, f, nil
}

// relocateSubtree updates the folder row and rewrites the path prefix
// (and depth, by depthDelta) of every descendant.
func relocateSubtree(tx *sql.Tx, f *models.Folder, name, newPath string, parentID *int64, depthDelta int) error {
	_, err := tx.Exec(`
		UPDATE folders SET
			path = $1 || substr(path, length($2) + 1),
			depth = depth + $3
		WHERE left(path, length($2) + 1) = $2 || '/'`,
		newPath, f.Path, depthDelta)
	if err != nil {
		return fmt.Errorf("rewrite subtree paths: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE folders SET name = $1, path = $2, depth = depth + $3, parent_id = $4
		WHERE id = $5`,
		name, newPath, depthDelta, parentID, f.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return nil
}

func findFolderTx(tx *sql.Tx, id int64) (*models.Folder, error) {
	f, err := scanFolder(tx.QueryRow(`SELECT `+folderColumns+` FROM folders WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return f, nil
}

func folderNameTaken(q querier, name string, parentID *int64, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM folders
			WHERE name = $1 AND parent_id IS NOT DISTINCT FROM $2 AND id <> $3
		)`, name, parentID, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check folder name: %w", err)
	}
	return taken, nil
}

// cleanFolderName normalizes a folder name and rejects empty names and
// names that would break path encoding.
func cleanFolderName(name string) (string, error) {
	name = normalizeName(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.Contains(name, "/") {
		return "", ErrInvalidName
	}
	return name, nil
}

// parentPathOf returns the path of the folder containing path.
func parentPathOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

// isWithin reports whether path equals root or lies below it.
func isWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

func samePtr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
