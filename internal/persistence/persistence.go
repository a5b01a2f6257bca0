// Package persistence writes the pipeline artifacts, specs.json and
// css-data.json, and reads them back for the validation stages and the
// API server.
package persistence

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

const indent = "  "

// Writer writes artifacts into one output directory.
// Each file is opened only once its full content has been encoded, so a
// failed encode leaves the previous artifact in place.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer for dir, or the default output directory.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = constants.DefaultOutputDir
	}
	return &Writer{Dir: dir}
}

// SpecsPath returns the path of specs.json.
func (w *Writer) SpecsPath() string {
	return filepath.Join(w.Dir, constants.SpecsFile)
}

// DataPath returns the path of css-data.json.
func (w *Writer) DataPath() string {
	return filepath.Join(w.Dir, constants.DataFile)
}

// WriteSpecs writes the index exactly as fetched, re-indented.
func (w *Writer) WriteSpecs(idx *cssdata.SpecIndex) error {
	if idx == nil {
		return errors.NewValidationError("index", nil, "no specification index to write")
	}

	var buf bytes.Buffer
	if len(idx.Raw) > 0 {
		if err := json.Indent(&buf, idx.Raw, "", indent); err != nil {
			return errors.WrapParse("json", constants.SpecsFile, err)
		}
		buf.WriteByte('\n')
	} else if err := encode(&buf, idx); err != nil {
		return errors.WrapParse("json", constants.SpecsFile, err)
	}

	return w.write(w.SpecsPath(), buf.Bytes())
}

// WriteDataset writes the annotated dataset.
func (w *Writer) WriteDataset(ds cssdata.Dataset) error {
	if ds == nil {
		ds = cssdata.Dataset{}
	}

	var buf bytes.Buffer
	if err := encode(&buf, ds); err != nil {
		return errors.WrapParse("json", constants.DataFile, err)
	}

	return w.write(w.DataPath(), buf.Bytes())
}

func (w *Writer) write(path string, data []byte) error {
	if err := os.MkdirAll(w.Dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", w.Dir, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}

	logging.Info().
		Str("path", path).
		Int("bytes", len(data)).
		Msg("Saved artifact")
	return nil
}

func encode(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	return enc.Encode(v)
}

// ReadDataset reads css-data.json.
func ReadDataset(path string) (cssdata.Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var ds cssdata.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if ds == nil {
		ds = cssdata.Dataset{}
	}
	return ds, nil
}

// ReadSpecs reads specs.json.
func ReadSpecs(path string) (*cssdata.SpecIndex, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	idx, err := cssdata.ParseSpecIndex(data)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return idx, nil
}
