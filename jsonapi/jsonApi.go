// maps all api-relevant golang-objects to JSON-objects
// list of structures: see /models/tankerRecord.go and /datapolish
package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Compufreak345/dbg"

	"github.com/scgdepot/tankerlog/datapolish"
	"github.com/scgdepot/tankerlog/models"
)

const jaTag = dbg.Tag("tankerlog/jsonapi/jsonApi.go")

// Dashboard is the daily view: the records of one day matching a search text, their totals and hourly activity.
type Dashboard struct {
	Date    string                  `json:"date"`
	Query   string                  `json:"query"`
	Records []models.TankerRecord   `json:"records"`
	Totals  datapolish.Totals       `json:"totals"`
	Hours   []datapolish.HourBucket `json:"hours"`
}

// BuildDashboard selects the records of date matching query. An empty date selects all days.
func BuildDashboard(records []models.TankerRecord, date string, query string) Dashboard {
	f := datapolish.Filter{Date: date, Text: query}
	selected := f.Apply(records)
	return Dashboard{
		Date:    date,
		Query:   query,
		Records: selected,
		Totals:  datapolish.AggregateTotals(selected),
		Hours:   datapolish.BucketByHour(selected),
	}
}

// GetDashboard returns the Dashboard of the given day as JSON.
func GetDashboard(records []models.TankerRecord, date string, query string) (marshaled []byte, err error) {
	defer func() { // Error handling, if this panics (should not happen)
		if errr := recover(); errr != nil {
			marshaled = []byte("unable to complete jsonApi.GetDashboard")
			dbg.E(jaTag, "recovering jsonApi.GetDashboard for %s : %v", date, errr)
			err = errors.New(fmt.Sprintf("%s", errr))
		}
	}()

	marshaled, err = json.Marshal(BuildDashboard(records, date, query))
	if err != nil {
		dbg.E(jaTag, "unable to marshal dashboard for %s : %s", date, err)
		return nil, err
	}
	return marshaled, nil
}

// GetDateRange gets the range of days records are available for.
func GetDateRange(records []models.TankerRecord) (marshaled []byte, err error) {
	defer func() { // Error handling, if this panics (should not happen)
		if errr := recover(); errr != nil {
			marshaled = []byte("unable to get date range")
			err = errors.New(fmt.Sprintf("%s", errr))
		}
	}()
	minDate, maxDate := datapolish.GetMinMaxDate(records)
	marshaled, err = json.Marshal(struct {
		Min   string `json:"start"`
		Max   string `json:"end"`
		Count int    `json:"count"`
	}{minDate, maxDate, len(records)})
	if err != nil {
		return nil, err
	}
	return marshaled, nil
}
