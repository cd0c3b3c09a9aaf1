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


// Package storage defines the local persistence interfaces used by the
// export pipeline, currently a transcript cache that spares the source
// API on repeated runs.
package storage

import (
	"context"

	"github.com/poiesic/meetvec/core"
)

// TranscriptCache stores fetched transcripts locally so reruns over the
// same date range do not hit the source API again.
type TranscriptCache interface {
	// Get returns the cached transcript for id, or ErrNotFound on a miss.
	Get(ctx context.Context, id string) (*core.Transcript, error)

	// Put stores the transcript under its id, overwriting any prior copy.
	Put(ctx context.Context, t *core.Transcript) error

	// Close releases the cache's resources.
	Close() error
}
