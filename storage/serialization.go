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

package storage

import (
	"github.com/poiesic/tm2map/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSnapshotInfo serializes a SnapshotInfo to bytes.
func MarshalSnapshotInfo(info *core.SnapshotInfo) []byte {
	buf := make([]byte, core.SnapshotInfoMUS.Size(*info))
	core.SnapshotInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalSnapshotInfo deserializes a SnapshotInfo from bytes.
func UnmarshalSnapshotInfo(data []byte) (*core.SnapshotInfo, error) {
	info, _, err := core.SnapshotInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// MarshalSettings serializes a Settings document to bytes.
func MarshalSettings(settings *core.Settings) []byte {
	buf := make([]byte, core.SettingsMUS.Size(*settings))
	core.SettingsMUS.Marshal(*settings, buf)
	return buf
}

// UnmarshalSettings deserializes a Settings document from bytes.
func UnmarshalSettings(data []byte) (*core.Settings, error) {
	settings, _, err := core.SettingsMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
