// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedCategory is one entry of the sample taxonomy. Parent refers to the
// name of an earlier entry; "" makes a top-level category.
type seedCategory struct {
	Name        string
	Parent      string
	Description string
}

var sampleTaxonomy = []seedCategory{
	{Name: "Legal", Description: "Contracts, filings and correspondence"},
	{Name: "Contracts", Parent: "Legal"},
	{Name: "Court filings", Parent: "Legal"},
	{Name: "Medical"},
	{Name: "Radiology", Parent: "Medical"},
	{Name: "Discharge summaries", Parent: "Medical"},
	{Name: "Finance"},
	{Name: "Invoices", Parent: "Finance"},
}

var sampleFolders = []string{"inbox", "archive", "archive/2025", "archive/2026"}

// Seed populates the database with initial development data: a default
// admin account, a sample taxonomy and a few folders. Each part is only
// written when its table is empty.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedTaxonomy(db); err != nil {
		return err
	}
	return seedFolders(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// 2FA is not enabled; the admin sets it up on first login.
	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin", "admin@annotadmin.local", string(hash), "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"username", "admin",
		"password", "admin",
	)
	return nil
}

func seedTaxonomy(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	type placed struct {
		id    int64
		level int
	}
	ids := make(map[string]placed, len(sampleTaxonomy))
	order := make(map[string]int)

	for _, c := range sampleTaxonomy {
		var (
			parentID *int64
			level    int
		)
		if c.Parent != "" {
			p, ok := ids[c.Parent]
			if !ok {
				return fmt.Errorf("seed category %q: parent %q not seeded yet", c.Name, c.Parent)
			}
			parentID = &p.id
			level = p.level + 1
		}

		var desc *string
		if c.Description != "" {
			d := c.Description
			desc = &d
		}

		var id int64
		err := tx.QueryRow(`
			INSERT INTO categories (name, parent_id, description, level, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, c.Name, parentID, desc, level, order[c.Parent]).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		order[c.Parent]++
		ids[c.Name] = placed{id: id, level: level}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit categories: %w", err)
	}
	slog.Info("seeded sample taxonomy", "categories", len(sampleTaxonomy))
	return nil
}

func seedFolders(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM folders").Scan(&count); err != nil {
		return fmt.Errorf("seed check folders: %w", err)
	}
	if count > 0 {
		return nil
	}

	type placed struct {
		id    int64
		depth int
	}
	ids := make(map[string]placed)
	for _, p := range sampleFolders {
		parent, name := splitSeedPath(p)
		var (
			parentID *int64
			depth    int
		)
		if parent != "" {
			pp := ids[parent]
			parentID = &pp.id
			depth = pp.depth + 1
		}

		var id int64
		err := db.QueryRow(`
			INSERT INTO folders (name, path, depth, parent_id, created_by)
			VALUES ($1, $2, $3, $4, 'admin')
			RETURNING id
		`, name, "/"+p, depth, parentID).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed folder %q: %w", p, err)
		}
		ids[p] = placed{id: id, depth: depth}
	}
	return nil
}

// splitSeedPath splits "a/b/c" into ("a/b", "c").
func splitSeedPath(p string) (parent, name string) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i], p[i+1:]
		}
	}
	return "", p
}
