package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTranscript(t *testing.T) {
	tests := []struct {
		name       string
		transcript *Transcript
		wantErr    error
	}{
		{
			name:       "valid transcript",
			transcript: &Transcript{ID: "t1", Title: "Standup"},
			wantErr:    nil,
		},
		{
			name:       "valid with no sentences",
			transcript: &Transcript{ID: "t2"},
			wantErr:    nil,
		},
		{
			name:       "nil transcript",
			transcript: nil,
			wantErr:    ErrInvalidTranscript,
		},
		{
			name:       "empty id",
			transcript: &Transcript{Title: "No ID"},
			wantErr:    ErrEmptyTranscriptID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTranscript(tt.transcript)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   &Chunk{TranscriptID: "t1", Index: 0, Total: 2, Text: "hello"},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "missing transcript id",
			chunk:   &Chunk{Index: 0, Total: 1, Text: "hello"},
			wantErr: ErrEmptyTranscriptID,
		},
		{
			name:    "empty text",
			chunk:   &Chunk{TranscriptID: "t1", Index: 0, Total: 1},
			wantErr: ErrEmptyChunkText,
		},
		{
			name:    "index beyond total",
			chunk:   &Chunk{TranscriptID: "t1", Index: 2, Total: 2, Text: "hello"},
			wantErr: ErrInvalidChunkIndex,
		},
		{
			name:    "negative index",
			chunk:   &Chunk{TranscriptID: "t1", Index: -1, Total: 1, Text: "hello"},
			wantErr: ErrInvalidChunkIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
