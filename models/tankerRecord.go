package models

// TankerRecord is one loading/unloading event of a tanker at the depot.
// Id, Date, CreatedBy and CreatedAt are set once on creation and never changed afterwards.
// The field order is the order of the structured export.
type TankerRecord struct {
	Id              string  `json:"id"`
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
	// calendar date, "2006-01-02"
	Date      string `json:"date"`
	CreatedBy string `json:"createdBy"`
	// UTC timestamp, "2006-01-02T15:04:05.000Z"
	CreatedAt string `json:"createdAt"`
}

// CloneRecords returns a copy of records that shares no backing array with it.
func CloneRecords(records []TankerRecord) []TankerRecord {
	if records == nil {
		return []TankerRecord{}
	}
	res := make([]TankerRecord, len(records))
	copy(res, records)
	return res
}
