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

package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the TCP address to listen on.
	// Default: ":10000"
	Addr string

	// ReadTimeout bounds reading an entire request, including the body.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds the graceful shutdown once the server is stopped.
	ShutdownTimeout time.Duration

	// AllowedOrigins lists the origins permitted by CORS. "*" allows any origin.
	AllowedOrigins []string

	// StaticDir is the directory of a built single-page frontend.
	// Empty disables static file serving.
	StaticDir string

	// Version is reported by the health endpoint.
	Version string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAddr sets the listen address.
func WithAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithTimeouts sets the read and write timeouts.
func WithTimeouts(read, write time.Duration) ConfigOption {
	return func(c *Config) {
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins ...string) ConfigOption {
	return func(c *Config) {
		c.AllowedOrigins = origins
	}
}

// WithStaticDir enables serving a single-page frontend from dir.
func WithStaticDir(dir string) ConfigOption {
	return func(c *Config) {
		c.StaticDir = dir
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) ConfigOption {
	return func(c *Config) {
		c.Version = version
	}
}

// DefaultConfig returns a Config listening on all interfaces with permissive CORS.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":10000",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigins:  []string{"*"},
		Version:         "2.0.0",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAddr("127.0.0.1:8000"),
//	    WithAllowedOrigins("http://localhost:5173"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.Addr == "" {
		return errors.New("server config: Addr is required")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("server config: timeouts must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("server config: ShutdownTimeout must be positive")
	}
	if c.StaticDir != "" {
		info, err := os.Stat(c.StaticDir)
		if err != nil {
			return fmt.Errorf("server config: StaticDir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("server config: StaticDir %s is not a directory", c.StaticDir)
		}
	}
	return nil
}
