package recordManager

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/scgdepot/tankerlog/models"
)

// Translation keys used for per-field validation messages.
const (
	ValidationRequired = "validation.required"
	ValidationNumber   = "validation.number"
	ValidationNegative = "validation.negative"
)

// RecordInput holds the fields an operator enters for a new record.
type RecordInput struct {
	SerialNumber    string  `json:"serialNumber"`
	TankerNumber    string  `json:"tankerNumber"`
	EntryTime       string  `json:"entryTime"`
	ExitTime        string  `json:"exitTime"`
	BcNumber        string  `json:"bcNumber"`
	OrderedQuantity float64 `json:"orderedQuantity"`
	LoadedQuantity  float64 `json:"loadedQuantity"`
	OldIndex        float64 `json:"oldIndex"`
	CurrentIndex    float64 `json:"currentIndex"`
	Destination     string  `json:"destination"`
}

// Validate returns a translation key per invalid field, nil if in is valid.
// Every text field except ExitTime is required, quantities must not be negative.
func (in *RecordInput) Validate() map[string]string {
	errs := make(map[string]string)
	required(errs, "serialNumber", in.SerialNumber)
	required(errs, "tankerNumber", in.TankerNumber)
	required(errs, "entryTime", in.EntryTime)
	required(errs, "bcNumber", in.BcNumber)
	required(errs, "destination", in.Destination)
	nonNegative(errs, "orderedQuantity", in.OrderedQuantity)
	nonNegative(errs, "loadedQuantity", in.LoadedQuantity)
	nonNegative(errs, "oldIndex", in.OldIndex)
	nonNegative(errs, "currentIndex", in.CurrentIndex)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (in *RecordInput) toRecord() models.TankerRecord {
	return models.TankerRecord{
		SerialNumber:    strings.TrimSpace(in.SerialNumber),
		TankerNumber:    strings.TrimSpace(in.TankerNumber),
		EntryTime:       strings.TrimSpace(in.EntryTime),
		ExitTime:        strings.TrimSpace(in.ExitTime),
		BcNumber:        strings.TrimSpace(in.BcNumber),
		OrderedQuantity: in.OrderedQuantity,
		LoadedQuantity:  in.LoadedQuantity,
		OldIndex:        in.OldIndex,
		CurrentIndex:    in.CurrentIndex,
		Destination:     strings.TrimSpace(in.Destination),
	}
}

// ClearValue set as ExitTime of a RecordPatch removes the exit time.
const ClearValue = "-"

// RecordPatch holds the changes of an update. Nil fields stay untouched.
// Id, date, creator and creation time have no field here and can not be changed.
type RecordPatch struct {
	SerialNumber    *string  `json:"serialNumber,omitempty"`
	TankerNumber    *string  `json:"tankerNumber,omitempty"`
	EntryTime       *string  `json:"entryTime,omitempty"`
	ExitTime        *string  `json:"exitTime,omitempty"`
	BcNumber        *string  `json:"bcNumber,omitempty"`
	OrderedQuantity *float64 `json:"orderedQuantity,omitempty"`
	LoadedQuantity  *float64 `json:"loadedQuantity,omitempty"`
	OldIndex        *float64 `json:"oldIndex,omitempty"`
	CurrentIndex    *float64 `json:"currentIndex,omitempty"`
	Destination     *string  `json:"destination,omitempty"`
}

// IsEmpty tells if p changes nothing.
func (p *RecordPatch) IsEmpty() bool {
	return p.SerialNumber == nil && p.TankerNumber == nil && p.EntryTime == nil && p.ExitTime == nil &&
		p.BcNumber == nil && p.OrderedQuantity == nil && p.LoadedQuantity == nil && p.OldIndex == nil &&
		p.CurrentIndex == nil && p.Destination == nil
}

// Validate checks the set fields with the rules of RecordInput.Validate.
func (p *RecordPatch) Validate() map[string]string {
	errs := make(map[string]string)
	if p.SerialNumber != nil {
		required(errs, "serialNumber", *p.SerialNumber)
	}
	if p.TankerNumber != nil {
		required(errs, "tankerNumber", *p.TankerNumber)
	}
	if p.EntryTime != nil {
		required(errs, "entryTime", *p.EntryTime)
	}
	if p.BcNumber != nil {
		required(errs, "bcNumber", *p.BcNumber)
	}
	if p.Destination != nil {
		required(errs, "destination", *p.Destination)
	}
	if p.OrderedQuantity != nil {
		nonNegative(errs, "orderedQuantity", *p.OrderedQuantity)
	}
	if p.LoadedQuantity != nil {
		nonNegative(errs, "loadedQuantity", *p.LoadedQuantity)
	}
	if p.OldIndex != nil {
		nonNegative(errs, "oldIndex", *p.OldIndex)
	}
	if p.CurrentIndex != nil {
		nonNegative(errs, "currentIndex", *p.CurrentIndex)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ApplyTo merges p into r.
func (p *RecordPatch) ApplyTo(r *models.TankerRecord) {
	applyString(&r.SerialNumber, p.SerialNumber)
	applyString(&r.TankerNumber, p.TankerNumber)
	applyString(&r.EntryTime, p.EntryTime)
	if p.ExitTime != nil {
		if strings.TrimSpace(*p.ExitTime) == ClearValue {
			r.ExitTime = ""
		} else {
			r.ExitTime = strings.TrimSpace(*p.ExitTime)
		}
	}
	applyString(&r.BcNumber, p.BcNumber)
	applyFloat(&r.OrderedQuantity, p.OrderedQuantity)
	applyFloat(&r.LoadedQuantity, p.LoadedQuantity)
	applyFloat(&r.OldIndex, p.OldIndex)
	applyFloat(&r.CurrentIndex, p.CurrentIndex)
	applyString(&r.Destination, p.Destination)
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func applyFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// FormValue is a form field as submitted: a JSON string or a JSON number.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

// RecordForm is the data entry form, every field as text.
type RecordForm struct {
	SerialNumber    FormValue `json:"serialNumber"`
	TankerNumber    FormValue `json:"tankerNumber"`
	EntryTime       FormValue `json:"entryTime"`
	ExitTime        FormValue `json:"exitTime"`
	BcNumber        FormValue `json:"bcNumber"`
	OrderedQuantity FormValue `json:"orderedQuantity"`
	LoadedQuantity  FormValue `json:"loadedQuantity"`
	OldIndex        FormValue `json:"oldIndex"`
	CurrentIndex    FormValue `json:"currentIndex"`
	Destination     FormValue `json:"destination"`
}

// Parse converts the form into a RecordInput. errs maps each invalid field to a translation key;
// the input is only usable if errs is nil.
func (f *RecordForm) Parse() (in RecordInput, errs map[string]string) {
	errs = make(map[string]string)
	in = RecordInput{
		SerialNumber: string(f.SerialNumber),
		TankerNumber: string(f.TankerNumber),
		EntryTime:    string(f.EntryTime),
		ExitTime:     string(f.ExitTime),
		BcNumber:     string(f.BcNumber),
		Destination:  string(f.Destination),
	}
	in.OrderedQuantity = parseQuantity(errs, "orderedQuantity", f.OrderedQuantity)
	in.LoadedQuantity = parseQuantity(errs, "loadedQuantity", f.LoadedQuantity)
	in.OldIndex = parseQuantity(errs, "oldIndex", f.OldIndex)
	in.CurrentIndex = parseQuantity(errs, "currentIndex", f.CurrentIndex)
	for field, key := range in.Validate() {
		if _, ok := errs[field]; !ok {
			errs[field] = key
		}
	}
	if len(errs) == 0 {
		errs = nil
	}
	return
}

func parseQuantity(errs map[string]string, field string, v FormValue) float64 {
	s := strings.TrimSpace(string(v))
	if s == "" {
		errs[field] = ValidationRequired
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		errs[field] = ValidationNumber
		return 0
	}
	return n
}

func required(errs map[string]string, field string, v string) {
	if strings.TrimSpace(v) == "" {
		errs[field] = ValidationRequired
	}
}

func nonNegative(errs map[string]string, field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		errs[field] = ValidationNumber
	} else if v < 0 {
		errs[field] = ValidationNegative
	}
}
