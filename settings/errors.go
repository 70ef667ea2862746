package settings

import "errors"

// ErrRepositoryRequired is returned when a settings repository is not provided.
var ErrRepositoryRequired = errors.New("settings repository required")
