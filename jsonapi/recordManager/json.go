package recordManager

import (
	"encoding/json"
	"errors"

	"github.com/Compufreak345/dbg"

	"github.com/scgdepot/tankerlog/datapolish"
	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/translate"
)

// Translation keys of the answer messages.
const (
	NoDataGiven      = "form.noData"
	InvalidFormat    = "form.invalidFormat"
	Unauthenticated  = "error.unauthenticated"
	PersistenceFail  = "error.persistence"
	RecordNotFound   = "error.notFound"
	InternalError    = "error.internal"
	ImportFailed     = "import.error"
	ValidationFailed = "form.error"
)

// JSONRecordsAnswer carries a record selection.
type JSONRecordsAnswer struct {
	models.JSONAnswer
	Records []models.TankerRecord
}

// JSONImportAnswer tells how many records an import added.
type JSONImportAnswer struct {
	models.JSONAnswer
	Imported int
	Skipped  int
}

// errorAnswer maps err to an error code and a localized message, filling per-field messages for validation errors.
func errorAnswer(err error, lang string) (ans models.JSONAnswer) {
	var vErr *ValidationError
	var pErr *PersistenceError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		ans = models.GetBadJSONAnswer(models.ErrCodeUnauthenticated, translate.Resolve(lang, Unauthenticated))
	case errors.As(err, &vErr):
		ans = models.GetBadJSONAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, ValidationFailed))
		ans.Errors = localizeFields(vErr.Fields, lang)
	case errors.Is(err, ErrInvalidInput):
		ans = models.GetBadJSONAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, InvalidFormat))
	case errors.As(err, &pErr):
		ans = models.GetBadJSONAnswer(models.ErrCodePersistence, translate.Resolve(lang, PersistenceFail))
	case errors.Is(err, ErrNotFound):
		ans = models.GetBadJSONAnswer(models.ErrCodeNotFound, translate.Resolve(lang, RecordNotFound))
	default:
		ans = models.GetBadJSONAnswer(models.ErrCodeInternal, translate.Resolve(lang, InternalError))
	}
	return
}

func localizeFields(fields map[string]string, lang string) map[string]string {
	res := make(map[string]string, len(fields))
	for f, key := range fields {
		res[f] = translate.Resolve(lang, key)
	}
	return res
}

// JSONCreateRecord creates a new record from the submitted entry form.
func JSONCreateRecord(formJson string, actor *models.Actor, lang string, s *Store) (res models.JSONInsertAnswer, err error) {
	if actor == nil || actor.Id == "" {
		res = models.JSONInsertAnswer{JSONAnswer: errorAnswer(ErrUnauthenticated, lang)}
		return
	}
	if formJson == "" {
		res = models.GetBadJSONInsertAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, NoDataGiven))
		return
	}
	f := &RecordForm{}
	err = json.Unmarshal([]byte(formJson), f)
	if err != nil {
		dbg.W(TAG, "Could not read JSON %v in JSONCreateRecord : ", formJson, err)
		res = models.GetBadJSONInsertAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, InvalidFormat))
		err = nil
		return
	}
	in, errs := f.Parse()
	if errs != nil {
		res = models.JSONInsertAnswer{JSONAnswer: errorAnswer(&ValidationError{Fields: errs}, lang)}
		return
	}
	rec, err := s.Add(in, actor)
	if err != nil {
		dbg.E(TAG, "Error in JSONCreateRecord Add: ", err)
		res = models.JSONInsertAnswer{JSONAnswer: errorAnswer(err, lang)}
		err = nil
		return
	}
	res = models.GetGoodJSONInsertAnswer(rec.Id, rec)
	return
}

// JSONUpdateRecord applies the changes in patchJson to the record with the given id.
func JSONUpdateRecord(id string, patchJson string, lang string, s *Store) (res models.JSONUpdateAnswer, err error) {
	if patchJson == "" {
		res = models.GetBadJSONUpdateAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, NoDataGiven), id)
		return
	}
	p := &RecordPatch{}
	err = json.Unmarshal([]byte(patchJson), p)
	if err != nil {
		dbg.W(TAG, "Could not read JSON %v in JSONUpdateRecord : ", patchJson, err)
		res = models.GetBadJSONUpdateAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, InvalidFormat), id)
		err = nil
		return
	}
	if p.IsEmpty() {
		res = models.GetBadJSONUpdateAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, NoDataGiven), id)
		return
	}
	if errs := p.Validate(); errs != nil {
		res = models.JSONUpdateAnswer{JSONAnswer: errorAnswer(&ValidationError{Fields: errs}, lang), RowCount: -1, Id: id}
		return
	}
	rowCount, err := s.Update(id, *p)
	if err != nil {
		dbg.E(TAG, "Error in JSONUpdateRecord Update: ", err)
		res = models.JSONUpdateAnswer{JSONAnswer: errorAnswer(err, lang), RowCount: -1, Id: id}
		err = nil
		return
	}
	var result interface{}
	if rec, gErr := s.Get(id); gErr == nil {
		result = rec
	}
	res = models.GetGoodJSONUpdateAnswer(rowCount, id, result)
	return
}

// JSONDeleteRecord deletes the record with the given id.
func JSONDeleteRecord(id string, lang string, s *Store) (res models.JSONDeleteAnswer, err error) {
	if id == "" {
		res = models.GetBadJSONDeleteAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, NoDataGiven), id)
		return
	}
	rowCount, err := s.Delete(id)
	if err != nil {
		dbg.E(TAG, "Error in JSONDeleteRecord Delete: ", err)
		res = models.JSONDeleteAnswer{JSONAnswer: errorAnswer(err, lang), RowCount: -1, Id: id}
		err = nil
		return
	}
	res = models.GetGoodJSONDeleteAnswer(rowCount, id)
	return
}

// JSONGetRecords returns the records selected by filter, newest first.
func JSONGetRecords(filter datapolish.Filter, s *Store) (res JSONRecordsAnswer, err error) {
	res = JSONRecordsAnswer{
		JSONAnswer: models.GetGoodJSONAnswer(),
		Records:    filter.Apply(s.List()),
	}
	return
}

// JSONGetRecord returns one record.
func JSONGetRecord(id string, lang string, s *Store) (res models.JSONSelectAnswer, err error) {
	rec, err := s.Get(id)
	if err != nil {
		res = models.JSONSelectAnswer{JSONAnswer: errorAnswer(err, lang)}
		err = nil
		return
	}
	res = models.GetGoodJSONSelectAnswer(rec)
	return
}

// JSONGetEmptyRecord returns JSONSelectAnswer with an empty entry form, serial number already suggested.
func JSONGetEmptyRecord(s *Store) (res models.JSONSelectAnswer, err error) {
	res = models.GetGoodJSONSelectAnswer(RecordForm{SerialNumber: FormValue(s.SuggestSerialNumber())})
	return
}

// JSONImportLegacy imports records exported by the browser client.
func JSONImportLegacy(data []byte, actor *models.Actor, lang string, s *Store) (res JSONImportAnswer, err error) {
	if actor == nil || actor.Id == "" {
		res = JSONImportAnswer{JSONAnswer: errorAnswer(ErrUnauthenticated, lang)}
		return
	}
	if len(data) == 0 {
		res = JSONImportAnswer{JSONAnswer: models.GetBadJSONAnswer(models.ErrCodeInvalidArgument, translate.Resolve(lang, NoDataGiven))}
		return
	}
	records, err := s.ImportLegacyJSON(data, actor)
	if err != nil {
		dbg.W(TAG, "Could not read legacy records in JSONImportLegacy : ", err)
		res = JSONImportAnswer{JSONAnswer: errorAnswer(err, lang)}
		err = nil
		return
	}
	added, err := s.Import(records)
	if err != nil {
		dbg.E(TAG, "Error in JSONImportLegacy Import: ", err)
		res = JSONImportAnswer{JSONAnswer: errorAnswer(err, lang)}
		res.ErrorMessage = translate.Resolve(lang, ImportFailed)
		err = nil
		return
	}
	res = JSONImportAnswer{JSONAnswer: models.GetGoodJSONAnswer(), Imported: added, Skipped: len(records) - added}
	return
}
