package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ManifestName is the manifest file written at the output root.
const ManifestName = "manifest.jsonl"

// Record is one manifest entry: a generated sample, its split assignment,
// and where its files landed. Paths are relative to the output root.
// BackgroundOnly marks samples that rendered with no retained boxes and so
// carry no label file.
type Record struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Split          Split  `json:"split"`
	Seed           uint64 `json:"seed"`
	ImagePath      string `json:"image_path"`
	LabelPath      string `json:"label_path,omitempty"`
	Boxes          int    `json:"boxes"`
	BackgroundOnly bool   `json:"background_only"`
}

// Manifest appends records to a JSONL file, one object per line. Each Append
// is flushed before returning so a crash loses at most the in-flight sample.
// Not safe for concurrent use; the assembler serializes access.
type Manifest struct {
	file *os.File
}

// OpenManifest opens the manifest at path for appending, creating it when
// missing.
func OpenManifest(path string) (*Manifest, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("dataset: open manifest: %w", err)
	}
	return &Manifest{file: file}, nil
}

// Append writes one record as a JSON line.
func (m *Manifest) Append(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("dataset: encode manifest record: %w", err)
	}
	line = append(line, '\n')
	if _, err := m.file.Write(line); err != nil {
		return fmt.Errorf("dataset: append manifest record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (m *Manifest) Close() error {
	return m.file.Close()
}

// ReadManifest loads all records from the manifest at path. A missing file
// is an empty manifest, which is how fresh output directories start.
func ReadManifest(path string) ([]Record, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: open manifest: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("dataset: manifest line %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read manifest: %w", err)
	}
	return records, nil
}
