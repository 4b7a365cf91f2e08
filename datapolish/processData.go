package datapolish

import (
	"sort"
	"strings"

	. "github.com/scgdepot/tankerlog/models"
)

// Totals are the summed quantities of a record selection.
type Totals struct {
	TotalLoaded  float64 `json:"totalLoaded"`
	TotalOrdered float64 `json:"totalOrdered"`
	Count        int     `json:"count"`
}

// HourBucket sums the records that entered during one hour of the day.
type HourBucket struct {
	Hour    string  `json:"hour"`
	Loaded  float64 `json:"loaded"`
	Ordered float64 `json:"ordered"`
}

// AggregateTotals sums loaded and ordered quantities of records. No records give zero totals.
func AggregateTotals(records []TankerRecord) (t Totals) {
	for _, r := range records {
		t.TotalLoaded += r.LoadedQuantity
		t.TotalOrdered += r.OrderedQuantity
	}
	t.Count = len(records)
	return
}

// HourLabel returns the bucket label for an entry time: the text before the first ':' followed by ":00".
// A time without ':' keeps all of its text, so "0815" gives "0815:00".
func HourLabel(entryTime string) string {
	hour, _, _ := strings.Cut(entryTime, ":")
	return hour + ":00"
}

// BucketByHour groups records by the hour of their entry time, sorted ascending by label.
func BucketByHour(records []TankerRecord) []HourBucket {
	idx := make(map[string]int)
	buckets := make([]HourBucket, 0)
	for _, r := range records {
		label := HourLabel(r.EntryTime)
		i, ok := idx[label]
		if !ok {
			i = len(buckets)
			idx[label] = i
			buckets = append(buckets, HourBucket{Hour: label})
		}
		buckets[i].Loaded += r.LoadedQuantity
		buckets[i].Ordered += r.OrderedQuantity
	}
	sort.Slice(buckets, func(a, b int) bool {
		return buckets[a].Hour < buckets[b].Hour
	})
	return buckets
}
