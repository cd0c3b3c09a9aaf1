package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/meetvec/core"
)

// AuditWriter appends exported vector records to a JSON Lines file, one
// record per line, in the order they were upserted. A record appears in
// the file only after its upsert succeeded.
type AuditWriter struct {
	file *os.File
	enc  *json.Encoder
}

// OpenAuditWriter opens the audit file at path for appending, creating
// it if needed.
func OpenAuditWriter(path string) (*AuditWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	return &AuditWriter{file: file, enc: json.NewEncoder(file)}, nil
}

// Write appends one record as a single JSON line.
func (w *AuditWriter) Write(record core.VectorRecord) error {
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// Close flushes and closes the audit file.
func (w *AuditWriter) Close() error {
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
