package export

import (
	"bytes"
	"errors"
	"io"

	"github.com/Compufreak345/dbg"

	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/tools"
)

// TableRenderer turns a Report into a paginated document.
type TableRenderer interface {
	RenderTable(r *Report, w io.Writer) error
	// Extension of the produced files, without dot.
	Extension() string
}

// StructuredRenderer dumps records losslessly, independent of language and direction.
type StructuredRenderer interface {
	RenderStructured(records []models.TankerRecord) ([]byte, error)
	Extension() string
}

// RenderError is returned when an artifact could not be produced. No file is left behind.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return "rendering " + e.Format + " failed: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// WriteArtifact renders into memory and writes the result to dir/name.
// The file only appears if rendering and writing both succeeded.
func WriteArtifact(dir string, name string, format string, render func(w io.Writer) error) (resPath string, err error) {
	var buf bytes.Buffer
	if err = render(&buf); err != nil {
		dbg.E(TAG, "Error rendering %s : %s", name, err)
		var rErr *RenderError
		if !errors.As(err, &rErr) {
			err = &RenderError{Format: format, Err: err}
		}
		return "", err
	}
	resPath, err = tools.WriteFileAtomic(dir, name, buf.Bytes())
	if err != nil {
		dbg.E(TAG, "Error writing %s : %s", name, err)
		return "", &RenderError{Format: format, Err: err}
	}
	dbg.I(TAG, "Wrote %s (%d bytes)", resPath, buf.Len())
	return
}
