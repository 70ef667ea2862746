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

// Package tm2map maps NAMASTE traditional-medicine terms to ICD-11 TM2 codes.
package tm2map

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/tm2map/search"
	"github.com/poiesic/tm2map/server"
	"github.com/poiesic/tm2map/settings"
	"github.com/poiesic/tm2map/source"
	"github.com/poiesic/tm2map/storage"
	"github.com/poiesic/tm2map/storage/badger"
)

// Service owns the storage backend, the data source, the mapping engine and
// the settings service.
type Service struct {
	backend      *badger.Backend
	settingsRepo storage.SettingsRepository
	snapshotRepo storage.SnapshotRepository
	source       *source.FileSource
	engine       *search.Engine
	settings     *settings.Service
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	dbPath      string
	dataDir     string
	termPath    string
	curatedPath string
	scores      *search.Scores
	logger      *slog.Logger
}

// WithDatabasePath stores settings and snapshot history under path.
// An empty path keeps them in memory.
func WithDatabasePath(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.dbPath = path
	}
}

// WithDataDir looks for the default data files in dir.
func WithDataDir(dir string) ServiceOption {
	return func(o *serviceOptions) {
		o.dataDir = dir
	}
}

// WithTermTable sets the term table path, overriding the data directory.
func WithTermTable(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.termPath = path
	}
}

// WithCuratedIndex sets the curated match index path, overriding the data directory.
func WithCuratedIndex(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.curatedPath = path
	}
}

// WithScores overrides the engine's confidence scores.
func WithScores(scores search.Scores) ServiceOption {
	return func(o *serviceOptions) {
		o.scores = &scores
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens storage, loads the data files and builds the engine.
func NewService(ctx context.Context, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		dataDir: ".",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.termPath == "" {
		options.termPath = filepath.Join(options.dataDir, source.DefaultTermTableFile)
	}
	if options.curatedPath == "" {
		options.curatedPath = filepath.Join(options.dataDir, source.DefaultCuratedIndexFile)
	}

	// Open backend
	backend, err := badger.OpenBackend(options.dbPath, options.dbPath == "")
	if err != nil {
		return nil, err
	}

	settingsRepo, err := badger.NewSettingsRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	snapshotRepo, err := badger.NewSnapshotRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	src, err := source.NewFileSource(options.termPath, options.curatedPath, source.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	engineOpts := []search.Option{
		search.WithLogger(options.logger),
		search.WithSnapshotRepository(snapshotRepo),
	}
	if options.scores != nil {
		engineOpts = append(engineOpts, search.WithScores(*options.scores))
	}
	engine, err := search.NewEngine(ctx, src, engineOpts...)
	if err != nil {
		src.Release()
		backend.Close()
		return nil, err
	}

	settingsSvc, err := settings.NewService(settingsRepo, settings.WithLogger(options.logger))
	if err != nil {
		src.Release()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:      backend,
		settingsRepo: settingsRepo,
		snapshotRepo: snapshotRepo,
		source:       src,
		engine:       engine,
		settings:     settingsSvc,
		logger:       options.logger,
	}, nil
}

// Close releases the source pool and closes storage.
func (s *Service) Close() error {
	s.source.Release()

	var errs []error
	if err := s.settingsRepo.Close(); err != nil {
		s.logger.Error("error closing settings repository", "err", err)
		errs = append(errs, err)
	}
	if err := s.snapshotRepo.Close(); err != nil {
		s.logger.Error("error closing snapshot repository", "err", err)
		errs = append(errs, err)
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) Engine() *search.Engine {
	return s.engine
}

func (s *Service) Settings() *settings.Service {
	return s.settings
}

func (s *Service) SnapshotRepository() storage.SnapshotRepository {
	return s.snapshotRepo
}

// NewServer builds an HTTP server over the service's engine and settings.
func (s *Service) NewServer(cfg *server.Config, opts ...server.Option) (*server.Server, error) {
	opts = append([]server.Option{server.WithLogger(s.logger)}, opts...)
	return server.New(s.engine, s.settings, cfg, opts...)
}
