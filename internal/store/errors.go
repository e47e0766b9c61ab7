// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/unicode/norm"
)

// Sentinel errors returned by the taxonomy and folder stores. Handlers map
// them to 400/404 responses.
var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyName      = errors.New("name is required")
	ErrDuplicateName  = errors.New("name already exists at this level")
	ErrParentNotFound = errors.New("parent not found")
	ErrHasChildren    = errors.New("category has subcategories")
	ErrInvalidMove    = errors.New("cannot move a folder into itself or one of its descendants")
	ErrInvalidName    = errors.New("folder names cannot contain '/'")
)

// SQLSTATE codes the stores translate into sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// normalizeName trims and NFC-normalizes a name so that visually equal
// names compare equal in the sibling uniqueness check.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	return hasSQLState(err, pgUniqueViolation)
}

// isForeignKeyViolation reports whether err is a PostgreSQL
// foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, pgForeignKeyViolation)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
