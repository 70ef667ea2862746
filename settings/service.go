// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package settings manages the integration settings document.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/storage"
)

// Service reads and updates the settings document.
type Service struct {
	repo   storage.SettingsRepository
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// WithClock sets the time source used to stamp updates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		s.now = now
		return nil
	}
}

// NewService creates a settings service backed by repo.
func NewService(repo storage.SettingsRepository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "settings")
	return s, nil
}

// Get returns the stored settings. When nothing has been stored yet the
// defaults are saved and returned.
func (s *Service) Get(ctx context.Context) (*core.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have saved while we waited
	settings, err = s.repo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	settings = core.DefaultSettings()
	settings.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("saving default settings: %w", err)
	}
	s.logger.Info("initialized default settings")
	return settings, nil
}

// Update validates and stores settings, stamping UpdatedAt.
// Validation errors wrap core.ErrInvalidSettings.
func (s *Service) Update(ctx context.Context, settings *core.Settings) (*core.Settings, error) {
	if err := core.ValidateSettings(settings); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	s.logger.Info("settings updated", "environment", settings.Environment)
	return settings, nil
}
