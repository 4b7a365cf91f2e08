package recordManager

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	simplejson "github.com/bitly/go-simplejson"

	"github.com/scgdepot/tankerlog/models"
)

// ImportLegacyJSON reads records exported by the browser client (the "scg_records" entry, or the
// situation_citerne_export_*.json download). Numbers may be given as JSON strings.
// Records without id get one from the Store; records without creator are attributed to actor.
func (s *Store) ImportLegacyJSON(data []byte, actor *models.Actor) (records []models.TankerRecord, err error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	// {"scg_records": [...]} as dumped from localStorage
	if arr, ok := js.CheckGet("scg_records"); ok {
		js = arr
	}
	items, err := js.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: expected an array of records", ErrInvalidInput)
	}
	now := s.clock.Now()
	records = make([]models.TankerRecord, 0, len(items))
	for i := range items {
		item := js.GetIndex(i)
		rec, errs := legacyRecord(item)
		if errs != nil {
			return nil, &ValidationError{Fields: prefixFields(i, errs)}
		}
		if rec.Id == "" {
			if rec.Id, err = s.ids.New(); err != nil {
				return nil, err
			}
		}
		if rec.CreatedAt == "" {
			rec.CreatedAt = s.timeConfig.GetTimestamp(now)
		}
		if rec.Date == "" {
			if len(rec.CreatedAt) >= 10 {
				rec.Date = rec.CreatedAt[:10]
			} else {
				rec.Date = s.timeConfig.GetDate(now)
			}
		}
		if rec.CreatedBy == "" && actor != nil {
			rec.CreatedBy = actor.Id
		}
		records = append(records, rec)
	}
	return records, nil
}

func legacyRecord(item *simplejson.Json) (rec models.TankerRecord, errs map[string]string) {
	errs = make(map[string]string)
	str := func(key string) string {
		v := item.Get(key)
		if s, err := v.String(); err == nil {
			return strings.TrimSpace(s)
		}
		if n, err := v.Float64(); err == nil {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return ""
	}
	num := func(key string) float64 {
		v, ok := item.CheckGet(key)
		if !ok {
			errs[key] = ValidationRequired
			return 0
		}
		n, err := v.Float64()
		if err != nil {
			s, serr := v.String()
			if serr != nil {
				errs[key] = ValidationNumber
				return 0
			}
			if n, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				errs[key] = ValidationNumber
				return 0
			}
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			errs[key] = ValidationNumber
		} else if n < 0 {
			errs[key] = ValidationNegative
		}
		return n
	}
	rec = models.TankerRecord{
		Id:              str("id"),
		SerialNumber:    str("serialNumber"),
		TankerNumber:    str("tankerNumber"),
		EntryTime:       str("entryTime"),
		ExitTime:        str("exitTime"),
		BcNumber:        str("bcNumber"),
		OrderedQuantity: num("orderedQuantity"),
		LoadedQuantity:  num("loadedQuantity"),
		OldIndex:        num("oldIndex"),
		CurrentIndex:    num("currentIndex"),
		Destination:     str("destination"),
		Date:            str("date"),
		CreatedBy:       str("createdBy"),
		CreatedAt:       str("createdAt"),
	}
	for _, f := range []struct{ key, v string }{
		{"tankerNumber", rec.TankerNumber},
		{"entryTime", rec.EntryTime},
		{"bcNumber", rec.BcNumber},
		{"destination", rec.Destination},
	} {
		required(errs, f.key, f.v)
	}
	if len(errs) == 0 {
		errs = nil
	}
	return
}

func prefixFields(i int, errs map[string]string) map[string]string {
	res := make(map[string]string, len(errs))
	for k, v := range errs {
		res[fmt.Sprintf("%d.%s", i, k)] = v
	}
	return res
}
