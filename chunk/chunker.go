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


// Package chunk splits transcripts into bounded-size text segments suitable
// for embedding. Consecutive sentences from the same speaker are grouped into
// a block; blocks larger than the size limit are split on sentence boundaries,
// and a single oversized sentence on word boundaries. A chunk never ends
// mid-word. Chunking is deterministic: the same transcript and size limit
// always produce the same boundaries, which keeps vector ids stable across
// reruns.
package chunk

import (
	"fmt"
	"strings"

	"github.com/poiesic/meetvec/core"
)

// DefaultMaxChunkSize is the default chunk size limit in characters.
const DefaultMaxChunkSize = 2000

// Chunker splits transcripts into chunks.
type Chunker struct {
	maxSize int
	source  string // Source label recorded in chunk metadata
}

// NewChunker creates a chunker.
// maxSize: chunk size limit in characters (DefaultMaxChunkSize if <= 0)
// source: source label for chunk metadata (e.g. "fireflies")
func NewChunker(maxSize int, source string) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	return &Chunker{maxSize: maxSize, source: source}
}

type speakerBlock struct {
	speaker   string
	sentences []string
}

// Chunk splits a transcript into ordered chunks.
// Returns an empty slice for a transcript with no sentences.
func (c *Chunker) Chunk(t *core.Transcript) ([]core.Chunk, error) {
	if err := core.ValidateTranscript(t); err != nil {
		return nil, err
	}

	blocks := groupBySpeaker(t.Sentences)

	// Split each block into size-bounded texts, remembering which block each
	// text came from so neighbor-speaker context survives the split.
	type piece struct {
		block int
		text  string
	}
	var pieces []piece
	for i, block := range blocks {
		for _, text := range c.splitBlock(block.sentences) {
			pieces = append(pieces, piece{block: i, text: text})
		}
	}

	chunks := make([]core.Chunk, 0, len(pieces))
	for i, p := range pieces {
		block := blocks[p.block]

		prevSpeaker := "None"
		if p.block > 0 {
			prevSpeaker = blocks[p.block-1].speaker
		}
		nextSpeaker := "None"
		if p.block < len(blocks)-1 {
			nextSpeaker = blocks[p.block+1].speaker
		}

		chunks = append(chunks, core.Chunk{
			TranscriptID: t.ID,
			Index:        i,
			Total:        len(pieces),
			Speaker:      block.speaker,
			Text:         p.text,
			Metadata: core.Metadata{
				"transcript_id":  t.ID,
				"title":          t.Title,
				"speaker":        block.speaker,
				"prev_speaker":   prevSpeaker,
				"next_speaker":   nextSpeaker,
				"participants":   t.Participants,
				"recording_date": t.Date,
				"duration":       t.Duration,
				"chunk_index":    i,
				"total_chunks":   len(pieces),
				"source":         c.source,
			},
		})
	}

	return chunks, nil
}

// groupBySpeaker merges consecutive sentences from the same speaker into blocks.
func groupBySpeaker(sentences []core.Sentence) []speakerBlock {
	var blocks []speakerBlock
	for _, s := range sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		speaker := fmt.Sprintf("Speaker %d", s.SpeakerID)
		if len(blocks) == 0 || blocks[len(blocks)-1].speaker != speaker {
			blocks = append(blocks, speakerBlock{speaker: speaker})
		}
		last := &blocks[len(blocks)-1]
		last.sentences = append(last.sentences, text)
	}
	return blocks
}

// splitBlock joins a block's sentences into texts no longer than maxSize,
// breaking on sentence boundaries first and word boundaries as a last resort.
func (c *Chunker) splitBlock(sentences []string) []string {
	var texts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			texts = append(texts, current.String())
			current.Reset()
		}
	}

	for _, sentence := range sentences {
		if len(sentence) > c.maxSize {
			// Oversized sentence: emit what we have, then split it on words.
			flush()
			texts = append(texts, splitWords(sentence, c.maxSize)...)
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > c.maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return texts
}

// splitWords splits text into pieces no longer than maxSize without breaking
// words. A single word longer than maxSize becomes its own piece.
func splitWords(text string, maxSize int) []string {
	var pieces []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > maxSize {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return pieces
}
