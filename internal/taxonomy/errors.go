// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"errors"
	"strings"
)

// Sentinel errors for taxonomy operations.
var (
	ErrEmptyName         = errors.New("category name is required")
	ErrUnknownCategory   = errors.New("category not found")
	ErrMalformedTaxonomy = errors.New("malformed taxonomy")
)

// Fallback messages used when the service fails without saying why.
const (
	msgFetchFailed  = "failed to fetch categories"
	msgCreateFailed = "failed to create category"
	msgUpdateFailed = "failed to update category"
	msgDeleteFailed = "failed to delete category"
)

// ServiceError is a failed call to the category service. Message is the
// server-supplied text when there was one, otherwise a generic fallback.
type ServiceError struct {
	Op      string // "fetch", "create", "update", "delete"
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// messenger is implemented by transport errors that carry a
// human-readable message from the server.
type messenger interface {
	ServerMessage() string
}

// newServiceError wraps err, preferring the server's own message.
func newServiceError(op, fallback string, err error) *ServiceError {
	msg := fallback
	var m messenger
	if errors.As(err, &m) {
		if s := strings.TrimSpace(m.ServerMessage()); s != "" {
			msg = s
		}
	}
	return &ServiceError{Op: op, Message: msg, Err: err}
}
