package chain

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/types"
)

// CompressedSuffix marks export files written as s2 streams.
const CompressedSuffix = ".s2"

// document is the export layout. Blocks keep the field order
// index, timestamp, data, previous_hash, nonce, hash.
type document[T any] struct {
	Difficulty uint32           `json:"difficulty"`
	Blocks     []types.Block[T] `json:"blocks"`
}

type exportOptions struct {
	compress bool
	indent   bool
}

// ExportOption configures Export.
type ExportOption func(*exportOptions)

// WithCompression wraps the export in an s2 stream.
func WithCompression() ExportOption {
	return func(o *exportOptions) { o.compress = true }
}

// WithIndent pretty-prints the JSON document. Whitespace does not affect import.
func WithIndent() ExportOption {
	return func(o *exportOptions) { o.indent = true }
}

// Export writes the chain as a JSON document. Importing the document and
// recomputing each block's hash reproduces the stored hash of every
// unmodified block.
func (c *Chain[T]) Export(w io.Writer, opts ...ExportOption) error {
	var o exportOptions
	for _, opt := range opts {
		opt(&o)
	}

	doc := document[T]{
		Difficulty: c.difficulty,
		Blocks:     c.Blocks(),
	}

	if !o.compress {
		return encodeDocument(w, doc, o.indent)
	}

	sw := s2.NewWriter(w)
	if err := encodeDocument(sw, doc, o.indent); err != nil {
		_ = sw.Close()
		return err
	}
	return errors.Wrap(sw.Close(), "failed to flush compressed export")
}

func encodeDocument[T any](w io.Writer, doc document[T], indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return errors.Wrap(enc.Encode(doc), "failed to encode chain")
}

// Import reads a document written by Export, compressed or not, and restores
// the chain without validating it.
//
// Interface-typed payloads come back as maps and scalars, with numbers decoded
// as json.Number. Payload hashing depends only on structure, so a struct
// appended to a Chain[any] and the map it is imported as hash identically.
func Import[T any](r io.Reader, opts ...Option[T]) (*Chain[T], error) {
	br := bufio.NewReader(r)

	// JSON never starts with 0xff, every s2/snappy stream does.
	var src io.Reader = br
	if head, err := br.Peek(1); err == nil && head[0] == 0xff {
		src = s2.NewReader(br)
	}

	dec := json.NewDecoder(src)
	dec.UseNumber()

	var doc document[T]
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode chain")
	}

	return Restore(doc.Difficulty, doc.Blocks, opts...)
}

// ExportFile writes the chain to path, compressing when path ends in ".s2".
// The document is written to a temporary file in the same directory and
// renamed over path, so an existing export is replaced whole or not at all.
func (c *Chain[T]) ExportFile(path string, opts ...ExportOption) (err error) {
	if strings.HasSuffix(path, CompressedSuffix) {
		opts = append(opts, WithCompression())
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create export directory")
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create export file")
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0o644); err != nil {
		return errors.Wrap(err, "failed to set export file mode")
	}
	if err = c.Export(f, opts...); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync export file")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "failed to close export file")
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return errors.Wrap(err, "failed to replace export file")
	}
	return nil
}

// ImportFile reads a chain previously written with ExportFile.
func ImportFile[T any](path string, opts ...Option[T]) (*Chain[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open export file")
	}
	defer f.Close()

	return Import(f, opts...)
}
