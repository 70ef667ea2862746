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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSettings indicates a Settings document failed validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrEmptyClientID indicates the ClientID field is blank.
	ErrEmptyClientID = errors.New("client id cannot be empty")

	// ErrEmptyCallbackURL indicates the CallbackURL field is blank.
	ErrEmptyCallbackURL = errors.New("callback url cannot be empty")
)
