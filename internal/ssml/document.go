// Package ssml finds and reads SSML documents and builds SSML from plain text.
//
// Documents are passed to the speech service as-is; no local markup
// validation is performed.
package ssml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputExtension is appended to a document stem to name its audio file.
const OutputExtension = ".wav"

// Error formats.
const (
	errFmtReadDir  = "failed to read source directory %s: %w"
	errFmtReadFile = "failed to read document %s: %w"
	errFmtPattern  = "invalid document pattern %q: %w"
)

// ErrNotDirectory is returned when the source path is not a directory.
var ErrNotDirectory = errors.New("source path is not a directory")

// Document is the raw content of one input file.
type Document struct {
	// Path is the file path as discovered.
	Path string
	// Name is the base name, e.g. "hello.xml".
	Name string
	// Stem is the base name without extension, e.g. "hello".
	Stem string
	// Content is the markup sent to the service.
	Content string
}

// OutputName returns the audio file name for the document.
func (d Document) OutputName() string {
	return OutputName(d.Stem)
}

// OutputName returns "<stem>.wav".
func OutputName(stem string) string {
	return stem + OutputExtension
}

// Discover lists the regular files directly inside dir whose names match
// pattern, case-insensitively, in directory order.
func Discover(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf(errFmtReadDir, dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf(errFmtReadDir, dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf(errFmtReadDir, dir, err)
	}

	lowerPattern := strings.ToLower(pattern)

	var paths []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matched, matchErr := filepath.Match(lowerPattern, strings.ToLower(entry.Name()))
		if matchErr != nil {
			return nil, fmt.Errorf(errFmtPattern, pattern, matchErr)
		}

		if matched {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	return paths, nil
}

// Read loads one document.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf(errFmtReadFile, path, err)
	}

	name := filepath.Base(path)

	return Document{
		Path:    path,
		Name:    name,
		Stem:    strings.TrimSuffix(name, filepath.Ext(name)),
		Content: string(data),
	}, nil
}
