package export_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/scgdepot/tankerlog/datapolish"
	. "github.com/scgdepot/tankerlog/jsonapi/export"
	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/translate"
)

func reversed(s []string) []string {
	res := make([]string, len(s))
	for i, v := range s {
		res[len(s)-1-i] = v
	}
	return res
}

func headers(r *Report) []string {
	res := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		res[i] = c.Header
	}
	return res
}

var testRecords = []models.TankerRecord{
	{Id: "b", SerialNumber: "02", TankerNumber: "T-200", EntryTime: "09:10", ExitTime: "09:40", BcNumber: "BC2",
		OrderedQuantity: 700, LoadedQuantity: 700, OldIndex: 1500, CurrentIndex: 2200, Destination: "Sfax",
		Date: "2024-01-20", CreatedBy: "op", CreatedAt: "2024-01-20T09:10:00.000Z"},
	{Id: "a", SerialNumber: "01", TankerNumber: "T-100", EntryTime: "08:15", BcNumber: "BC1",
		OrderedQuantity: 520, LoadedQuantity: 500, OldIndex: 1000, CurrentIndex: 1500, Destination: "Tunis",
		Date: "2024-01-10", CreatedBy: "op", CreatedAt: "2024-01-10T08:15:00.000Z"},
}

var _ = Describe("Report", func() {

	opts := ReportOptions{GeneratedAt: time.Date(2024, 1, 21, 12, 0, 0, 0, time.UTC)}

	Describe("BuildReport", func() {
		It("should lay out columns and rows in canonical order for LTR languages", func() {
			defer GinkgoRecover()
			r := BuildReport(testRecords, translate.English, opts)
			Expect(r.Direction).To(Equal(LTR))
			Expect(headers(r)).To(Equal([]string{"No.", "Tanker No.", "Entry time", "Exit time", "BC No.",
				"Ordered qty", "Loaded qty", "Old index", "Current index", "Destination"}))
			Expect(r.Rows).To(HaveLen(2))
			Expect(r.Rows[0]).To(Equal([]string{"1", "T-200", "09:10", "09:40", "BC2", "700", "700", "1,500", "2,200", "Sfax"}))
			Expect(r.Rows[1][0]).To(Equal("2"))
			Expect(r.Rows[1][3]).To(Equal(EmptyCell))
			Expect(r.Columns[0].Align).To(Equal(AlignCenter))
			Expect(r.Columns[1].Align).To(Equal(AlignLeft))
		})

		It("should mirror headers and rows identically for RTL languages", func() {
			defer GinkgoRecover()
			ltr := BuildReport(testRecords, translate.English, opts)
			rtl := BuildReport(testRecords, translate.Arabic, opts)
			Expect(rtl.Direction).To(Equal(RTL))

			arHeaders := make([]string, 0)
			for _, c := range ltr.Columns {
				arHeaders = append(arHeaders, translate.Resolve(translate.Arabic, headerKey(c.Key)))
			}
			Expect(headers(rtl)).To(Equal(reversed(arHeaders)))
			Expect(rtl.Columns[len(rtl.Columns)-1].Key).To(Equal(ColIndex))
			Expect(rtl.Columns[len(rtl.Columns)-1].Align).To(Equal(AlignCenter))
			Expect(rtl.Columns[0].Align).To(Equal(AlignRight))

			for i := range ltr.Rows {
				Expect(rtl.Rows[i]).To(Equal(reversed(ltr.Rows[i])))
			}
		})

		It("should summarize exactly the given records", func() {
			defer GinkgoRecover()
			r := BuildReport(testRecords, translate.English, opts)
			Expect(r.Totals).To(Equal(datapolish.Totals{TotalLoaded: 1200, TotalOrdered: 1220, Count: 2}))
			Expect(r.Summary).To(Equal([]SummaryLine{
				{Label: "Total loaded", Value: "1,200 L"},
				{Label: "Total ordered", Value: "1,220 L"},
				{Label: "Tanker count", Value: "2"},
			}))
		})

		It("should produce an empty report without records", func() {
			defer GinkgoRecover()
			r := BuildReport(nil, translate.French, opts)
			Expect(r.Rows).To(BeEmpty())
			Expect(r.Columns).To(HaveLen(10))
			Expect(r.Totals).To(Equal(datapolish.Totals{}))
			Expect(r.Summary[2].Value).To(Equal("0"))
		})

		It("should fill header block and footer", func() {
			defer GinkgoRecover()
			o := opts
			o.StartDate = "2024-01-01"
			r := BuildReport(testRecords, translate.English, o)
			Expect(r.Title).To(Equal("Tanker Status Report"))
			Expect(r.Subtitle).To(Equal("Fuel Distribution Directorate | Depot Department"))
			Expect(r.DateRange).To(Equal("Start date: 2024-01-01 | End date: -"))
			Expect(r.Footer.Version).To(Equal("Version 1.0"))
			Expect(r.Footer.GeneratedAt).To(Equal("2024-01-21 12:00"))
			Expect(r.Footer.ResponsibleName).To(Equal("Depot Manager"))

			o.Title = "Custom"
			o.Version = "v2"
			r = BuildReport(testRecords, translate.English, o)
			Expect(r.Title).To(Equal("Custom"))
			Expect(r.Footer.Version).To(Equal("v2"))
		})

		It("should show keys for an unknown language", func() {
			defer GinkgoRecover()
			r := BuildReport(testRecords, "xx", opts)
			Expect(r.Columns[1].Header).To(Equal("dashboard.tankerNum"))
			Expect(r.Direction).To(Equal(LTR))
		})

		It("should build regional language tags like their base language", func() {
			defer GinkgoRecover()
			recs := append(testRecords[:0:0], testRecords...)
			recs[0].LoadedQuantity = 1200.5
			for regional, base := range map[string]string{"ar-MA": translate.Arabic, "en-US": translate.English, "fr-CA": translate.French} {
				got := BuildReport(recs, regional, opts)
				want := BuildReport(recs, base, opts)
				Expect(got.Language).To(Equal(base))
				Expect(got.Direction).To(Equal(want.Direction))
				Expect(headers(got)).To(Equal(headers(want)))
				Expect(got.Title).To(Equal(want.Title))
				Expect(got.Summary).To(Equal(want.Summary))
				Expect(got.Rows).To(Equal(want.Rows))
			}
			ar := BuildReport(recs, "ar-MA", opts)
			Expect(ar.Columns[0].Header).ToNot(Equal("dashboard.destination"))
			Expect(ar.Rows[0]).To(ContainElement("1,200.5"))
		})

		It("should use latin digits for arabic", func() {
			defer GinkgoRecover()
			r := BuildReport(testRecords, translate.Arabic, opts)
			// mirrored: loaded quantity is the fourth cell from the left
			Expect(r.Rows[0][len(r.Rows[0])-7]).To(MatchRegexp(`^[0-9]+$`))
		})
	})
})

func headerKey(col string) string {
	return map[string]string{
		ColIndex:           "dashboard.serialNum",
		ColTankerNumber:    "dashboard.tankerNum",
		ColEntryTime:       "dashboard.entry",
		ColExitTime:        "dashboard.exit",
		ColBcNumber:        "dashboard.bcNum",
		ColOrderedQuantity: "dashboard.ordered",
		ColLoadedQuantity:  "dashboard.loaded",
		ColOldIndex:        "dashboard.oldIdx",
		ColCurrentIndex:    "dashboard.currentIdx",
		ColDestination:     "dashboard.destination",
	}[col]
}
