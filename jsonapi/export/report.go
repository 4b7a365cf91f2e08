package export

import (
	"slices"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/scgdepot/tankerlog/datapolish"
	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/tools"
	"github.com/scgdepot/tankerlog/translate"
)

// Direction is the writing direction of a report.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// Align is a cell alignment as understood by gofpdf.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Keys of the report columns, in canonical order.
const (
	ColIndex           = "index"
	ColTankerNumber    = "tankerNumber"
	ColEntryTime       = "entryTime"
	ColExitTime        = "exitTime"
	ColBcNumber        = "bcNumber"
	ColOrderedQuantity = "orderedQuantity"
	ColLoadedQuantity  = "loadedQuantity"
	ColOldIndex        = "oldIndex"
	ColCurrentIndex    = "currentIndex"
	ColDestination     = "destination"
)

var canonicalColumns = []struct{ key, header string }{
	{ColIndex, "dashboard.serialNum"},
	{ColTankerNumber, "dashboard.tankerNum"},
	{ColEntryTime, "dashboard.entry"},
	{ColExitTime, "dashboard.exit"},
	{ColBcNumber, "dashboard.bcNum"},
	{ColOrderedQuantity, "dashboard.ordered"},
	{ColLoadedQuantity, "dashboard.loaded"},
	{ColOldIndex, "dashboard.oldIdx"},
	{ColCurrentIndex, "dashboard.currentIdx"},
	{ColDestination, "dashboard.destination"},
}

// EmptyCell is shown for a record without exit time.
const EmptyCell = "-"

// Column is a report column with its translated header and the alignment of its cells.
type Column struct {
	Key    string
	Header string
	Align  Align
}

// SummaryLine is one labeled total below the table.
type SummaryLine struct {
	Label string
	Value string
}

// Footer is printed below the summary and on every page.
type Footer struct {
	Organization     string
	Department       string
	ResponsibleLabel string
	ResponsibleName  string
	GeneratedAt      string
	Version          string
}

// Report is the format independent content of a tanker status report.
// Columns and every row of Rows are in display order, mirrored for RTL languages.
type Report struct {
	Language  string
	Direction Direction
	Title     string
	Subtitle  string
	DateRange string
	Columns   []Column
	Rows      [][]string
	Totals    datapolish.Totals
	Summary   []SummaryLine
	Footer    Footer
	NoRecords string
}

// ReportOptions override parts of a report. Zero values use the translated defaults.
type ReportOptions struct {
	Title       string
	StartDate   string
	EndDate     string
	GeneratedAt time.Time
	Version     string
	TimeConfig  *tools.TimeConfig
}

// BuildReport lays out records, in the given order, as a report in lang.
func BuildReport(records []models.TankerRecord, lang string, opts ReportOptions) *Report {
	lang = translate.BaseLanguage(lang)
	T := func(key string) string { return translate.Resolve(lang, key) }
	tc := opts.TimeConfig
	if tc == nil {
		tc = tools.GetDefaultTimeConfig()
	}
	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	rtl := translate.IsRTL(lang)
	p := numberPrinter(lang)

	r := &Report{
		Language:  lang,
		Direction: LTR,
		Title:     opts.Title,
		Subtitle:  T("footer.organization") + " | " + T("footer.department"),
		DateRange: T("export.startDate") + ": " + orDash(opts.StartDate) + " | " + T("export.endDate") + ": " + orDash(opts.EndDate),
		Rows:      make([][]string, 0, len(records)),
		Totals:    datapolish.AggregateTotals(records),
		Footer: Footer{
			Organization:     T("footer.organization"),
			Department:       T("footer.department"),
			ResponsibleLabel: T("footer.responsible"),
			ResponsibleName:  T("footer.name"),
			GeneratedAt:      tc.GetDateForText(generatedAt),
			Version:          opts.Version,
		},
		NoRecords: T("dashboard.noRecords"),
	}
	if rtl {
		r.Direction = RTL
	}
	if r.Title == "" {
		r.Title = T("export.title")
	}
	if r.Footer.Version == "" {
		r.Footer.Version = T("footer.version")
	}

	cellAlign := AlignLeft
	if rtl {
		cellAlign = AlignRight
	}
	cols := make([]Column, len(canonicalColumns))
	for i, c := range canonicalColumns {
		cols[i] = Column{Key: c.key, Header: T(c.header), Align: cellAlign}
		if c.key == ColIndex {
			cols[i].Align = AlignCenter
		}
	}
	r.Columns = mirror(cols, rtl)

	for i, rec := range records {
		exit := rec.ExitTime
		if exit == "" {
			exit = EmptyCell
		}
		row := []string{
			strconv.Itoa(i + 1),
			rec.TankerNumber,
			rec.EntryTime,
			exit,
			rec.BcNumber,
			formatNumber(p, rec.OrderedQuantity),
			formatNumber(p, rec.LoadedQuantity),
			formatNumber(p, rec.OldIndex),
			formatNumber(p, rec.CurrentIndex),
			rec.Destination,
		}
		r.Rows = append(r.Rows, mirror(row, rtl))
	}

	r.Summary = []SummaryLine{
		{Label: T("dashboard.totalLoaded"), Value: formatNumber(p, r.Totals.TotalLoaded) + " L"},
		{Label: T("dashboard.totalOrdered"), Value: formatNumber(p, r.Totals.TotalOrdered) + " L"},
		{Label: T("dashboard.tankerCount"), Value: strconv.Itoa(r.Totals.Count)},
	}
	return r
}

// mirror returns a copy of s, reversed if rtl. Headers and rows go through here alike.
func mirror[E any](s []E, rtl bool) []E {
	res := slices.Clone(s)
	if rtl {
		slices.Reverse(res)
	}
	return res
}

func orDash(s string) string {
	if s == "" {
		return EmptyCell
	}
	return s
}

// numberPrinter formats numbers the way lang groups them, always with latin digits.
func numberPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	if translate.IsRTL(lang) {
		if latn, err := tag.SetTypeForKey("nu", "latn"); err == nil {
			tag = latn
		}
	}
	return message.NewPrinter(tag)
}

func formatNumber(p *message.Printer, v float64) string {
	return p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}
