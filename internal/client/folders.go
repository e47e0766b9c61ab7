// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"annotadmin/internal/models"
)

// DeleteFolderResult describes a removed folder subtree.
type DeleteFolderResult struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
	FolderID     int64  `json:"folderId"`
	FolderPath   string `json:"folderPath"`
}

type folderResponse struct {
	Message string         `json:"message"`
	Folder  *models.Folder `json:"folder"`
}

// ListFolders returns the children of parentID (nil for the top level),
// sorted by name.
func (c *Client) ListFolders(ctx context.Context, parentID *int64) ([]models.Folder, error) {
	var q url.Values
	if parentID != nil {
		q = url.Values{"parentId": {strconv.FormatInt(*parentID, 10)}}
	}
	var out struct {
		Folders []models.Folder `json:"folders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/folders", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

// GetFolder returns one folder.
func (c *Client) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	var out folderResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/folders/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Folder, nil
}

// FolderTrail returns the breadcrumb trail of a folder as computed by the server.
func (c *Client) FolderTrail(ctx context.Context, id int64) (models.Trail, error) {
	var out struct {
		Trail models.Trail `json:"trail"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/folders/%d/trail", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Trail, nil
}

// CreateFolder creates name under parentID (nil for the top level).
func (c *Client) CreateFolder(ctx context.Context, name string, parentID *int64) (*models.Folder, error) {
	in := struct {
		Name     string `json:"name"`
		ParentID *int64 `json:"parentId,omitempty"`
	}{name, parentID}
	var out folderResponse
	if err := c.do(ctx, http.MethodPost, "/api/folders", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Folder, nil
}

// RenameFolder renames a folder; descendant paths follow.
func (c *Client) RenameFolder(ctx context.Context, id int64, name string) (*models.Folder, error) {
	var out folderResponse
	in := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/folders/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Folder, nil
}

// MoveFolder re-parents a folder. A nil parent moves it to the top level.
func (c *Client) MoveFolder(ctx context.Context, id int64, parentID *int64) (*models.Folder, error) {
	in := struct {
		ParentID *int64 `json:"parentId"`
	}{parentID}
	var out folderResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/folders/%d/move", id), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Folder, nil
}

// DeleteFolder removes a folder and everything below it.
func (c *Client) DeleteFolder(ctx context.Context, id int64) (*DeleteFolderResult, error) {
	var out DeleteFolderResult
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/folders/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsurePath walks a slash-separated folder path from the top level,
// creating each missing segment, and returns the last folder. An empty
// path returns nil.
func (c *Client) EnsurePath(ctx context.Context, path string) (*models.Folder, error) {
	var (
		parentID *int64
		current  *models.Folder
	)
	for _, name := range strings.Split(path, "/") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		children, err := c.ListFolders(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", name, err)
		}

		current = nil
		for i := range children {
			if children[i].Name == name {
				current = &children[i]
				break
			}
		}
		if current == nil {
			current, err = c.CreateFolder(ctx, name, parentID)
			if err != nil {
				return nil, fmt.Errorf("create %q: %w", name, err)
			}
			if current == nil {
				return nil, fmt.Errorf("create %q: empty response", name)
			}
		}
		id := current.ID
		parentID = &id
	}
	return current, nil
}
