// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import "log/slog"

// Notifier receives user-facing outcome messages from the store. The
// console CLI prints them; tests record them.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// logNotifier is the default Notifier; it writes to slog.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Success(msg string) {
	n.logger.Info(msg)
}

func (n logNotifier) Failure(msg string) {
	n.logger.Warn(msg)
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier routes outcome messages to n instead of the log.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger used for diagnostics and the default notifier.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
