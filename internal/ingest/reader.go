// Package ingest reads uploaded resume files into retrievable documents.
// The filename carries everything the pipeline needs: the stem becomes the
// document id and a "public" substring marks the access classification.
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/TwigBush/sift-go/internal/retrieval"
)

const maxParallelReads = 4

// ReadDir loads every supported file (.pdf, .txt) in dir. Subdirectories and
// unsupported extensions are skipped; a file that fails to parse is logged
// and skipped rather than failing the whole ingest. Results keep directory
// listing order.
func ReadDir(dir string) ([]retrieval.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}

	docs := make([]*retrieval.Document, len(entries))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxParallelReads)
	for i, entry := range entries {
		if entry.IsDir() {
			continue
		}
		p.Go(func() {
			doc, err := ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				slog.Warn("skipping unreadable upload", "file", entry.Name(), "err", err)
				return
			}
			if doc == nil {
				return // unsupported extension
			}
			mu.Lock()
			docs[i] = doc
			mu.Unlock()
		})
	}
	p.Wait()

	out := make([]retrieval.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// ReadFile loads a single uploaded file as a document. It returns (nil, nil)
// for unsupported extensions.
func ReadFile(path string) (*retrieval.Document, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	var content string
	var err error
	switch ext {
	case "txt":
		var raw []byte
		raw, err = os.ReadFile(path)
		content = string(raw)
	case "pdf":
		content, err = readPDF(path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &retrieval.Document{
		ID:      strings.TrimSuffix(name, filepath.Ext(name)),
		Content: content,
		Metadata: map[string]string{
			"access": Classify(name),
		},
	}, nil
}

// Classify derives the access tag from the filename, mirroring the upload
// convention: anything named "public" is world-readable, everything else is
// owner-only.
func Classify(filename string) string {
	if strings.Contains(strings.ToLower(filename), "public") {
		return "public"
	}
	return "private"
}

// Supported reports whether the file extension is accepted for upload.
func Supported(filename string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf", "txt":
		return true
	default:
		return false
	}
}
