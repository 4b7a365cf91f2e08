package export

import (
	"github.com/ugorji/go/codec"

	"github.com/scgdepot/tankerlog/models"
)

// JSONRenderer writes records as an indented JSON array, fields in declaration order of TankerRecord.
type JSONRenderer struct{}

// RenderStructured implements StructuredRenderer.
func (JSONRenderer) RenderStructured(records []models.TankerRecord) (out []byte, err error) {
	var jh codec.JsonHandle
	jh.Indent = 2
	jh.HTMLCharsAsIs = true
	err = codec.NewEncoderBytes(&out, &jh).Encode(models.CloneRecords(records))
	if err != nil {
		return nil, &RenderError{Format: "json", Err: err}
	}
	return
}

// Extension implements StructuredRenderer.
func (JSONRenderer) Extension() string {
	return "json"
}
