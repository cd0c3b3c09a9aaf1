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


package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CheckpointSet records which transcripts have been fully exported.
// Add must persist the id before returning so that a crash mid-run
// never loses completed work.
type CheckpointSet interface {
	Contains(id string) bool
	Add(id string) error
	Len() int
}

// CheckpointStore is a file-backed CheckpointSet, one transcript id per
// line. The whole file is loaded at open; each Add appends a line and
// syncs before returning.
type CheckpointStore struct {
	path string
	file *os.File
	ids  map[string]struct{}
}

// OpenCheckpointStore opens (or creates) the checkpoint file at path and
// loads all recorded ids into memory.
func OpenCheckpointStore(path string) (*CheckpointStore, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}

	ids := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		ids[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	// Position at end for appends
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to seek checkpoint file: %w", err)
	}

	return &CheckpointStore{path: path, file: file, ids: ids}, nil
}

// Contains reports whether id has been checkpointed.
func (s *CheckpointStore) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add records id as exported. Duplicate adds are no-ops.
func (s *CheckpointStore) Add(id string) error {
	if s.Contains(id) {
		return nil
	}

	if _, err := fmt.Fprintln(s.file, id); err != nil {
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	s.ids[id] = struct{}{}
	return nil
}

// Len returns the number of checkpointed ids.
func (s *CheckpointStore) Len() int {
	return len(s.ids)
}

// Close releases the underlying file handle.
func (s *CheckpointStore) Close() error {
	return s.file.Close()
}
