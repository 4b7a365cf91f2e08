package export

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Compufreak345/dbg"

	"github.com/scgdepot/tankerlog/datapolish"
	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/tools"
	"github.com/scgdepot/tankerlog/translate"
)

// File name prefixes of the exported artifacts.
const (
	ReportFilePrefix = "situation_citerne"
	DumpFilePrefix   = "situation_citerne_export"
)

// Export formats.
const (
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

var ErrFormatNotSupported = errors.New("Format not supported")

// ExportRequest selects the records to export and how.
// Empty StartDate / EndDate leave the range open, empty Ids select all records in the range.
type ExportRequest struct {
	Format    string   `json:"format"`
	Language  string   `json:"language"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Ids       []string `json:"ids"`
	Title     string   `json:"title"`
}

// Exporter writes report and dump artifacts into Dir.
type Exporter struct {
	Dir        string
	Table      TableRenderer
	Structured StructuredRenderer
	TimeConfig *tools.TimeConfig
	// Version overrides the translated version label of the footer.
	Version string
	Clock   func() time.Time
}

// NewExporter returns an Exporter writing pdf reports and json dumps to dir.
func NewExporter(dir string, fontFile string) *Exporter {
	return &Exporter{
		Dir:        dir,
		Table:      PDFRenderer{FontFile: fontFile},
		Structured: JSONRenderer{},
		TimeConfig: tools.GetDefaultTimeConfig(),
		Clock:      time.Now,
	}
}

func (e *Exporter) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Exporter) timeConfig() *tools.TimeConfig {
	if e.TimeConfig == nil {
		return tools.GetDefaultTimeConfig()
	}
	return e.TimeConfig
}

// Select returns the records of snapshot matching req, in snapshot order.
func Select(req ExportRequest, snapshot []models.TankerRecord) []models.TankerRecord {
	f := datapolish.Filter{Start: req.StartDate, End: req.EndDate, Ids: req.Ids}
	return f.Apply(snapshot)
}

// Export writes the records of snapshot selected by req as one artifact and returns its path.
// snapshot is read only; callers pass one Store listing so the selection is consistent.
func (e *Exporter) Export(req ExportRequest, snapshot []models.TankerRecord) (resPath string, count int, err error) {
	records := Select(req, snapshot)
	now := e.now()
	tc := e.timeConfig()
	lang := translate.NormalizeLanguage(req.Language)

	switch strings.ToLower(req.Format) {
	case FormatPDF, "":
		if e.Table == nil {
			return "", 0, ErrFormatNotSupported
		}
		report := BuildReport(records, lang, ReportOptions{
			Title:       req.Title,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			GeneratedAt: now,
			Version:     e.Version,
			TimeConfig:  tc,
		})
		name := tools.ExportFileName(ReportFilePrefix, now, lang, e.Table.Extension(), tc)
		resPath, err = WriteArtifact(e.Dir, name, e.Table.Extension(), func(w io.Writer) error {
			return e.Table.RenderTable(report, w)
		})
	case FormatJSON:
		if e.Structured == nil {
			return "", 0, ErrFormatNotSupported
		}
		name := tools.ExportFileName(DumpFilePrefix, now, "", e.Structured.Extension(), tc)
		resPath, err = WriteArtifact(e.Dir, name, e.Structured.Extension(), func(w io.Writer) error {
			data, err := e.Structured.RenderStructured(records)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		})
	default:
		dbg.W(TAG, "Export format %q not supported", req.Format)
		return "", 0, ErrFormatNotSupported
	}
	if err != nil {
		return "", 0, err
	}
	return resPath, len(records), nil
}

// JSONExportAnswer tells where the exported file was written.
type JSONExportAnswer struct {
	models.JSONAnswer
	ResPath  string
	FileName string
	Count    int
}

// JSONExport exports the records of snapshot selected by req into a file of the Exporter's directory.
// format : pdf or json
func JSONExport(req ExportRequest, snapshot []models.TankerRecord, e *Exporter) (answer JSONExportAnswer, err error) {
	lang := translate.NormalizeLanguage(req.Language)
	resPath, count, err := e.Export(req, snapshot)
	if err != nil {
		dbg.E(TAG, "Error JSONExport/exporting to %s : %s", req.Format, err)
		var rErr *RenderError
		switch {
		case errors.Is(err, ErrFormatNotSupported):
			answer.JSONAnswer = models.GetBadJSONAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, "export.formatNotSupported"))
		case errors.As(err, &rErr):
			answer.JSONAnswer = models.GetBadJSONAnswer(models.ErrCodeRender, translate.Resolve(lang, "error.render"))
		default:
			answer.JSONAnswer = models.GetBadJSONAnswer(models.ErrCodeInternal, translate.Resolve(lang, "error.internal"))
		}
		err = nil
		return
	}
	answer.JSONAnswer = models.GetGoodJSONAnswer()
	answer.ResPath = resPath
	answer.FileName = filepath.Base(resPath)
	answer.Count = count
	return
}
