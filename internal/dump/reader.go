// Package dump streams a possibly-compressed Wikidata entity dump, yielding
// one decoded entity record at a time without loading the file into memory.
package dump

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

// ParseError reports a JSON decode failure at a specific line of the dump.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dump: parse error at %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader streams entity records from a dump file one line at a time.
// A Reader is single-consumer and not safe for concurrent use; callers that
// want parallel transforms should fan out after reading, not read from
// multiple goroutines.
type Reader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	line    int
	limit   int
	emitted int
}

// Open opens path for streaming. Compression is selected by file extension:
// ".bz2" (bzip2), ".gz" (gzip), anything else is read as plain text.
// limit, if positive, stops iteration after that many entities.
func Open(path string, limit int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dump: open %q: %w", path, err)
	}

	var src io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		src = bzip2.NewReader(f)
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("dump: open gzip %q: %w", path, err)
		}
		src = gz
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	return &Reader{path: path, file: f, scanner: scanner, limit: limit}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Next decodes the next entity record from the dump. It returns
// (nil, nil, io.EOF) when the stream (or the configured limit) is exhausted.
func (r *Reader) Next() (*wikidata.RawEntity, map[string]any, error) {
	if r.limit > 0 && r.emitted >= r.limit {
		return nil, nil, io.EOF
	}

	for r.scanner.Scan() {
		r.line++
		cleaned, ok := cleanDumpLine(r.scanner.Text())
		if !ok {
			continue
		}

		var raw map[string]any
		if err := sonic.UnmarshalString(cleaned, &raw); err != nil {
			return nil, nil, &ParseError{Path: r.path, Line: r.line, Err: err}
		}
		if raw == nil {
			continue
		}

		entity, err := decodeRawEntity(raw)
		if err != nil {
			return nil, nil, &ParseError{Path: r.path, Line: r.line, Err: err}
		}

		r.emitted++
		return entity, raw, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("dump: read %q: %w", r.path, err)
	}
	return nil, nil, io.EOF
}

// cleanDumpLine strips the framing tolerated around each data line: a
// leading "[", a trailing "]" and/or trailing ",". Blank lines and bare
// brackets yield (_, false).
func cleanDumpLine(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line == "[" || line == "]" {
		return "", false
	}
	line = strings.TrimPrefix(line, "[")
	line = strings.TrimSuffix(line, ",")
	line = strings.TrimSuffix(line, "]")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}

func decodeRawEntity(raw map[string]any) (*wikidata.RawEntity, error) {
	e := &wikidata.RawEntity{}
	if id, ok := raw["id"].(string); ok {
		e.ID = id
	}
	if t, ok := raw["type"].(string); ok {
		e.Type = t
	}
	e.Labels, _ = raw["labels"].(map[string]any)
	e.Descriptions, _ = raw["descriptions"].(map[string]any)
	e.Aliases, _ = raw["aliases"].(map[string]any)
	e.Claims, _ = raw["claims"].(map[string]any)
	e.Sitelinks, _ = raw["sitelinks"].(map[string]any)
	return e, nil
}
