// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"fmt"
	"net/http"

	"annotadmin/internal/models"
	"annotadmin/internal/taxonomy"
)

var _ taxonomy.Service = (*Client)(nil)

type categoryResponse struct {
	Message  string           `json:"message"`
	Category *models.Category `json:"category"`
}

// List returns the flat category collection in server order.
func (c *Client) List(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Categories == nil {
		out.Categories = []models.Category{}
	}
	return out.Categories, nil
}

// Create adds a category and returns the stored record.
func (c *Client) Create(ctx context.Context, in taxonomy.CreateInput) (*models.Category, error) {
	var out categoryResponse
	if err := c.do(ctx, http.MethodPost, "/api/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

// Update applies a partial change and returns the full record.
func (c *Client) Update(ctx context.Context, id int64, in taxonomy.UpdateInput) (*models.Category, error) {
	var out categoryResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/categories/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

// Delete removes a category.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil, nil, nil)
}

// Tree returns the nested category tree as built by the server.
func (c *Client) Tree(ctx context.Context) ([]*models.TreeNode, error) {
	var out struct {
		Categories []*models.TreeNode `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories/tree", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Stats returns usage counts for one category.
func (c *Client) Stats(ctx context.Context, id int64) (*models.CategoryStats, error) {
	var out models.CategoryStats
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d/stats", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Flat returns the server's pre-order listing with depths.
func (c *Client) Flat(ctx context.Context) ([]models.FlatEntry, error) {
	var out struct {
		Categories []models.FlatEntry `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories/flat", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}
