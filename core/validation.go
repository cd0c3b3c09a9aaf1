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

import "fmt"

// ValidateTranscript validates a Transcript according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//
// NOT validated:
//   - Sentences (an empty meeting is valid; the chunker produces no chunks)
//   - Metadata (opaque by contract)
func ValidateTranscript(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("%w: transcript is nil", ErrInvalidTranscript)
	}

	if t.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTranscript, ErrEmptyTranscriptID)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - TranscriptID must not be empty
//   - Text must not be empty
//   - Index must be within [0, Total)
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if c.TranscriptID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyTranscriptID)
	}

	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	if c.Index < 0 || c.Index >= c.Total {
		return fmt.Errorf("%w: %w: index %d, total %d", ErrInvalidChunk, ErrInvalidChunkIndex, c.Index, c.Total)
	}

	return nil
}
