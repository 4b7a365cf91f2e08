// Package export is responsible for exporting tanker records as pdf report or as json dump.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Compufreak345/dbg"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

var TAG = dbg.Tag("tankerlog/jsonapi/export")

const (
	pageMargin   = 10.0
	pageBottom   = 190.0
	lineHeight   = 5.0
	cellPadding  = 2.0
	headerHeight = 8.0
)

// column widths in mm, summing up to the printable width of a landscape A4 page
var columnWidths = map[string]float64{
	ColIndex:           12,
	ColTankerNumber:    32,
	ColEntryTime:       22,
	ColExitTime:        22,
	ColBcNumber:        30,
	ColOrderedQuantity: 28,
	ColLoadedQuantity:  28,
	ColOldIndex:        28,
	ColCurrentIndex:    28,
	ColDestination:     47,
}

type Row struct {
	H     float64
	Cells []*Cell
}

type Cell struct {
	W     float64
	H     float64
	Lines []string
	Align Align
}

type Color struct {
	R int
	G int
	B int
}

var (
	colorBrand  = Color{R: 27, G: 77, B: 140}
	colorGrey   = Color{R: 100, G: 100, B: 100}
	colorFooter = Color{R: 150, G: 150, B: 150}
	colorStripe = Color{R: 240, G: 244, B: 250}
	colorBorder = Color{R: 200, G: 200, B: 200}
)

// PDFRenderer renders reports with gofpdf on landscape A4.
// Without FontFile the core font Arial is used and text is converted to ISO-8859-1,
// characters outside of it (e.g. arabic letters) become '?'.
// FontFile may point to a UTF-8 TrueType font containing the needed glyphs; they are not shaped.
type PDFRenderer struct {
	FontFile string
}

// Extension implements TableRenderer.
func (PDFRenderer) Extension() string {
	return "pdf"
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	font   string
	conv   func(string) string
	utf8   bool
	report *Report
	widths []float64
}

// RenderTable implements TableRenderer.
func (pr PDFRenderer) RenderTable(r *Report, out io.Writer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			dbg.E(TAG, "Panic while rendering pdf : %v", rec)
			err = &RenderError{Format: "pdf", Err: fmt.Errorf("%v", rec)}
		}
	}()

	pw := &pdfWriter{
		pdf:    gofpdf.New("L", "mm", "A4", ""),
		font:   "Arial",
		conv:   convertUtfToIso,
		report: r,
	}
	pw.pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pw.pdf.SetAutoPageBreak(false, pageMargin)
	if pr.FontFile != "" {
		fontBytes, err := os.ReadFile(pr.FontFile)
		if err != nil {
			dbg.E(TAG, "Unable to read font %s : %s", pr.FontFile, err)
			return &RenderError{Format: "pdf", Err: err}
		}
		pw.pdf.AddUTF8FontFromBytes("report", "", fontBytes)
		pw.pdf.AddUTF8FontFromBytes("report", "B", fontBytes)
		pw.font = "report"
		pw.conv = keepBMP
		pw.utf8 = true
	}
	for _, c := range r.Columns {
		pw.widths = append(pw.widths, columnWidths[c.Key])
	}
	pw.pdf.SetFooterFunc(pw.footer)

	pw.pdf.AddPage()
	pw.titleBlock()
	pw.table()
	pw.summary()

	if err = pw.pdf.Error(); err != nil {
		return &RenderError{Format: "pdf", Err: err}
	}
	if err = pw.pdf.Output(out); err != nil {
		return &RenderError{Format: "pdf", Err: err}
	}
	return nil
}

func (pw *pdfWriter) setColor(c Color) {
	pw.pdf.SetTextColor(c.R, c.G, c.B)
}

func (pw *pdfWriter) pageWidth() float64 {
	w, _ := pw.pdf.GetPageSize()
	return w
}

func (pw *pdfWriter) titleBlock() {
	pdf := pw.pdf
	w := pw.pageWidth() - 2*pageMargin

	pdf.SetFont(pw.font, "B", 20)
	pw.setColor(colorBrand)
	pdf.CellFormat(w, 10, pw.conv(pw.report.Title), "", 1, "C", false, 0, "")

	pdf.SetFont(pw.font, "", 12)
	pw.setColor(colorGrey)
	pdf.CellFormat(w, 7, pw.conv(pw.report.Subtitle), "", 1, "C", false, 0, "")

	pdf.SetFont(pw.font, "", 10)
	pdf.CellFormat(w, 6, pw.conv(pw.report.DateRange), "", 1, "C", false, 0, "")

	y := pdf.GetY() + 2
	pdf.SetDrawColor(colorBrand.R, colorBrand.G, colorBrand.B)
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, y, pageMargin+w, y)
	pdf.SetLineWidth(0.2)
	pdf.SetY(y + 3)
}

func (pw *pdfWriter) tableHeader() {
	pdf := pw.pdf
	pdf.SetFont(pw.font, "B", 9)
	pdf.SetFillColor(colorBrand.R, colorBrand.G, colorBrand.B)
	pdf.SetDrawColor(colorBrand.R, colorBrand.G, colorBrand.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetX(pageMargin)
	for i, c := range pw.report.Columns {
		pdf.CellFormat(pw.widths[i], headerHeight, pw.conv(c.Header), "1", 0, "CM", true, 0, "")
	}
	pdf.Ln(-1)
}

func (pw *pdfWriter) table() {
	pdf := pw.pdf
	pw.tableHeader()
	pdf.SetFont(pw.font, "", 9)
	if len(pw.report.Rows) == 0 {
		pw.setColor(colorGrey)
		pdf.CellFormat(pw.pageWidth()-2*pageMargin, 10, pw.conv(pw.report.NoRecords), "", 1, "C", false, 0, "")
		return
	}

	rows := make([]*Row, 0, len(pw.report.Rows))
	for _, values := range pw.report.Rows {
		maxH := 0.0
		r := &Row{Cells: make([]*Cell, 0, len(values))}
		for i, v := range values {
			c := pw.calcMultiCell(pw.widths[i], v, &maxH)
			c.Align = pw.report.Columns[i].Align
			r.Cells = append(r.Cells, c)
		}
		r.H = maxH
		rows = append(rows, r)
	}

	for i, r := range rows {
		if pdf.GetY()+r.H > pageBottom {
			pdf.AddPage()
			pw.tableHeader()
			pdf.SetFont(pw.font, "", 9)
		}
		pw.setColor(Color{})
		pdf.SetDrawColor(colorBorder.R, colorBorder.G, colorBorder.B)
		if i%2 == 1 {
			pdf.SetFillColor(colorStripe.R, colorStripe.G, colorStripe.B)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x := pageMargin
		y := pdf.GetY()
		for _, c := range r.Cells {
			pdf.Rect(x, y, c.W, r.H, "FD")
			pw.addMultiCell(c, x, y)
			x += c.W
		}
		pdf.SetXY(pageMargin, y+r.H)
	}
}

// summary prints the totals and the signature block; they swap sides for RTL reports.
func (pw *pdfWriter) summary() {
	pdf := pw.pdf
	if pdf.GetY()+30 > pageBottom {
		pdf.AddPage()
	}
	y := pdf.GetY() + 8
	half := (pw.pageWidth() - 2*pageMargin) / 2
	summaryX, sigX := pageMargin, pageMargin+half
	summaryAlign, sigAlign := "L", "R"
	if pw.report.Direction == RTL {
		summaryX, sigX = sigX, summaryX
		summaryAlign, sigAlign = sigAlign, summaryAlign
	}

	pdf.SetFont(pw.font, "B", 11)
	pw.setColor(Color{})
	for i, l := range pw.report.Summary {
		txt := l.Label + ": " + l.Value
		if pw.report.Direction == RTL {
			txt = l.Value + " :" + l.Label
		}
		pdf.SetXY(summaryX, y+float64(i)*7)
		pdf.CellFormat(half, 7, pw.conv(txt), "", 0, summaryAlign, false, 0, "")
	}

	pdf.SetFont(pw.font, "", 10)
	pw.setColor(colorGrey)
	pdf.SetXY(sigX, y)
	pdf.CellFormat(half, 7, pw.conv(pw.report.Footer.ResponsibleLabel), "", 0, sigAlign, false, 0, "")
	pdf.SetFont(pw.font, "B", 10)
	pw.setColor(Color{})
	pdf.SetXY(sigX, y+7)
	pdf.CellFormat(half, 7, pw.conv(pw.report.Footer.ResponsibleName), "", 0, sigAlign, false, 0, "")
	pdf.SetY(y + float64(len(pw.report.Summary))*7)
}

func (pw *pdfWriter) footer() {
	pdf := pw.pdf
	pdf.SetY(-12)
	pdf.SetFont(pw.font, "", 8)
	pw.setColor(colorFooter)
	txt := pw.report.Footer.Version + " | " + pw.report.Footer.GeneratedAt
	pdf.CellFormat(pw.pageWidth()-2*pageMargin, 5, pw.conv(txt), "", 0, "C", false, 0, "")
}

// addMultiCell prints the lines of c into the box at x,y.
func (pw *pdfWriter) addMultiCell(c *Cell, x float64, y float64) {
	ty := y + cellPadding/2
	for _, l := range c.Lines {
		pw.pdf.SetXY(x, ty)
		pw.pdf.CellFormat(c.W, lineHeight, l, "", 0, string(c.Align), false, 0, "")
		ty += lineHeight
	}
}

// calcMultiCell splits txt into lines fitting width and raises maxH to the resulting cell height.
func (pw *pdfWriter) calcMultiCell(width float64, txt string, maxH *float64) *Cell {
	lines := make([]string, 0, 1)
	if pw.utf8 {
		// SplitLines measures bytes against the single-byte width table
		lines = append(lines, pw.pdf.SplitText(pw.conv(txt), width-cellPadding)...)
	} else {
		for _, l := range pw.pdf.SplitLines([]byte(pw.conv(txt)), width-cellPadding) {
			lines = append(lines, string(l))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	h := lineHeight*float64(len(lines)) + cellPadding
	if *maxH < h {
		*maxH = h
	}
	return &Cell{
		W:     width,
		H:     h,
		Lines: lines,
	}
}

// keepBMP replaces runes the UTF-8 font width table can not hold with '?'.
func keepBMP(s string) string {
	for _, r := range s {
		if r > 0xFFFF {
			return strings.Map(func(r rune) rune {
				if r > 0xFFFF {
					return '?'
				}
				return r
			}, s)
		}
	}
	return s
}

// convertUtfToIso Converts an UTF-8-String to an ISO-8859-1-string, replacing what it can not represent with '?'.
func convertUtfToIso(s string) string {
	res := make([]byte, 0, len(s))
	for _, r := range s {
		switch r {
		case '\u202f', '\u2009':
			// narrow spaces used for digit grouping
			r = '\u00a0'
		case '\u200e', '\u200f', '\u061c':
			continue
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		res = append(res, b)
	}
	return string(res)
}
