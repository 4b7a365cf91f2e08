// Some helper methods for selecting tanker records: by date, by free text or by id.
// All functions keep the order of their input, which is newest-first for a store listing.

package datapolish

import (
	"strings"

	. "github.com/scgdepot/tankerlog/models"
)

// Filter combines the selections used by the dashboard and by export requests.
// Empty fields select everything; they are applied in the order Date, Start/End, Text, Ids.
type Filter struct {
	Date  string   `json:"date"`
	Start string   `json:"startDate"`
	End   string   `json:"endDate"`
	Text  string   `json:"query"`
	Ids   []string `json:"ids"`
}

// Apply returns the records matching every non-empty part of f.
func (f *Filter) Apply(records []TankerRecord) []TankerRecord {
	res := records
	if f.Date != "" {
		res = FilterByDateExact(res, f.Date)
	}
	if f.Start != "" || f.End != "" {
		res = FilterByDateRange(res, f.Start, f.End)
	}
	res = FilterByText(res, f.Text)
	if len(f.Ids) > 0 {
		res = FilterByIdSet(res, f.Ids)
	}
	return res
}

// FilterByDateRange returns the records with start <= date <= end.
// Dates are ISO calendar dates, so comparing the strings compares the days. An empty bound is open.
func FilterByDateRange(records []TankerRecord, start string, end string) []TankerRecord {
	return filter(records, func(r *TankerRecord) bool {
		return (start == "" || r.Date >= start) && (end == "" || r.Date <= end)
	})
}

// FilterByDateExact returns the records of exactly one day.
func FilterByDateExact(records []TankerRecord, date string) []TankerRecord {
	return filter(records, func(r *TankerRecord) bool {
		return r.Date == date
	})
}

// FilterByText returns the records whose tanker number, destination or BC number contains query, ignoring case.
// An empty query matches all records.
func FilterByText(records []TankerRecord, query string) []TankerRecord {
	q := strings.ToLower(query)
	if q == "" {
		return filter(records, func(*TankerRecord) bool { return true })
	}
	return filter(records, func(r *TankerRecord) bool {
		return strings.Contains(strings.ToLower(r.TankerNumber), q) ||
			strings.Contains(strings.ToLower(r.Destination), q) ||
			strings.Contains(strings.ToLower(r.BcNumber), q)
	})
}

// FilterByIdSet returns the records whose id is in ids, in store order.
func FilterByIdSet(records []TankerRecord, ids []string) []TankerRecord {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return filter(records, func(r *TankerRecord) bool {
		_, ok := set[r.Id]
		return ok
	})
}

// GetMinMaxDate returns the first and the last date found in records, empty strings for no records.
func GetMinMaxDate(records []TankerRecord) (minDate string, maxDate string) {
	for i, r := range records {
		if i == 0 || r.Date < minDate {
			minDate = r.Date
		}
		if r.Date > maxDate {
			maxDate = r.Date
		}
	}
	return
}

func filter(records []TankerRecord, keep func(*TankerRecord) bool) []TankerRecord {
	res := make([]TankerRecord, 0, len(records))
	for i := range records {
		if keep(&records[i]) {
			res = append(res, records[i])
		}
	}
	return res
}
