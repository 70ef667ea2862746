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

// Package storage provides the storage abstraction layer for tm2map.
//
// The engine itself serves searches from an in-memory snapshot; storage keeps
// the small amount of state that must outlive a process: the integration
// settings document and a history of loaded snapshot fingerprints.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: common lifecycle shared by all repositories
//   - SettingsRepository: the integration settings document
//   - SnapshotRepository: latest snapshot info and load history
//
// # Usage
//
// Open a backend and build repositories on it:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	settingsRepo, err := badger.NewSettingsRepository(backend)
//
// Use in tests with in-memory storage:
//
//	settingsRepo, snapshotRepo, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
