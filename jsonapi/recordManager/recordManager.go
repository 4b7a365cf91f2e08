// Package recordManager is responsible for CRUD tanker records.
// The whole collection is kept in memory, newest first, and written as one entry on every change.
package recordManager

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Compufreak345/dbg"
	"github.com/google/uuid"

	"github.com/scgdepot/tankerlog/dbMan"
	"github.com/scgdepot/tankerlog/models"
	"github.com/scgdepot/tankerlog/tools"
)

const TAG = dbg.Tag("tankerlog/jsonapi/recordManager")

// MaxSerialNumber is the last serial label before the rotation starts at 01 again.
const MaxSerialNumber = 8

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// IDGen creates record ids.
type IDGen interface {
	New() (string, error)
}

type uuidGen struct{}

func (uuidGen) New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for record dates and creation times.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGen sets the generator of record ids.
func WithIDGen(g IDGen) Option {
	return func(s *Store) { s.ids = g }
}

// WithTimeConfig sets how dates and creation times are formatted.
func WithTimeConfig(tc *tools.TimeConfig) Option {
	return func(s *Store) { s.timeConfig = tc }
}

// Store holds the record collection. Calls are serialized, so one Store is the single writer of its Persister.
type Store struct {
	mu         sync.Mutex
	p          dbMan.Persister
	records    []models.TankerRecord
	clock      Clock
	ids        IDGen
	timeConfig *tools.TimeConfig
}

// Open loads the collection saved in p.
func Open(p dbMan.Persister, opts ...Option) (s *Store, err error) {
	s = &Store{
		p:          p,
		records:    []models.TankerRecord{},
		clock:      realClock{},
		ids:        uuidGen{},
		timeConfig: tools.GetDefaultTimeConfig(),
	}
	for _, o := range opts {
		o(s)
	}
	data, err := p.Load()
	if err != nil {
		dbg.E(TAG, "Unable to load records : ", err)
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if len(data) > 0 {
		var records []models.TankerRecord
		if err = dbMan.Decode(data, &records); err != nil {
			dbg.E(TAG, "Unable to decode stored records : ", err)
			return nil, &PersistenceError{Op: "decode", Err: err}
		}
		if records != nil {
			s.records = records
		}
	}
	dbg.I(TAG, "Loaded %d records", len(s.records))
	return s, nil
}

// Close closes the underlying Persister.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Close()
}

// commit persists next and makes it the current collection. On failure the current collection stays.
func (s *Store) commit(op string, next []models.TankerRecord) error {
	data, err := dbMan.Encode(next)
	if err != nil {
		dbg.E(TAG, "Unable to encode records in %s : %s", op, err)
		return &PersistenceError{Op: op, Err: err}
	}
	if err = s.p.Save(data); err != nil {
		dbg.E(TAG, "Unable to save records in %s : %s", op, err)
		return &PersistenceError{Op: op, Err: err}
	}
	s.records = next
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].Id == id {
			return i
		}
	}
	return -1
}

// Add creates a new record from in, stamped with id, today's date, actor and creation time.
// The record is placed first in the collection. in is stored as given: RecordForm.Parse validates user input.
func (s *Store) Add(in RecordInput, actor *models.Actor) (rec models.TankerRecord, err error) {
	if actor == nil || actor.Id == "" {
		return rec, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = in.toRecord()
	rec.Id, err = s.ids.New()
	if err != nil {
		dbg.E(TAG, "Unable to create record id : ", err)
		return models.TankerRecord{}, err
	}
	now := s.clock.Now()
	rec.Date = s.timeConfig.GetDate(now)
	rec.CreatedAt = s.timeConfig.GetTimestamp(now)
	rec.CreatedBy = actor.Id

	next := make([]models.TankerRecord, 0, len(s.records)+1)
	next = append(next, rec)
	next = append(next, s.records...)
	if err = s.commit("add", next); err != nil {
		return models.TankerRecord{}, err
	}
	dbg.D(TAG, "Added record %s by %s", rec.Id, actor.Id)
	return rec, nil
}

// Update merges patch into the record with the given id. An unknown id changes nothing,
// the collection is written all the same. rowCount is 1 if the record was found.
// The patch is not validated here, JSONUpdateRecord does that for user input.
func (s *Store) Update(id string, patch RecordPatch) (rowCount int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := models.CloneRecords(s.records)
	if i := s.indexOf(id); i >= 0 {
		patch.ApplyTo(&next[i])
		rowCount = 1
	} else {
		dbg.W(TAG, "Update of unknown record %s", id)
	}
	if err = s.commit("update", next); err != nil {
		return 0, err
	}
	return
}

// Delete removes the record with the given id. An unknown id changes nothing,
// the collection is written all the same. rowCount is 1 if the record was found.
func (s *Store) Delete(id string) (rowCount int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.TankerRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.Id == id {
			rowCount++
			continue
		}
		next = append(next, r)
	}
	if rowCount == 0 {
		dbg.W(TAG, "Delete of unknown record %s", id)
	}
	if err = s.commit("delete", next); err != nil {
		return 0, err
	}
	return
}

// List returns a copy of the collection, newest first.
func (s *Store) List() []models.TankerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneRecords(s.records)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (rec models.TankerRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], nil
	}
	return rec, ErrNotFound
}

// Import puts the given records in front of the collection, skipping ids that are already known.
// The imported records keep their order. Either all of them are stored or none.
func (s *Store) Import(records []models.TankerRecord) (added int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.records)+len(records))
	for _, r := range s.records {
		known[r.Id] = true
	}
	next := make([]models.TankerRecord, 0, len(s.records)+len(records))
	for _, r := range records {
		if r.Id == "" || known[r.Id] {
			continue
		}
		known[r.Id] = true
		next = append(next, r)
	}
	added = len(next)
	if added == 0 {
		return 0, nil
	}
	next = append(next, s.records...)
	if err = s.commit("import", next); err != nil {
		return 0, err
	}
	dbg.I(TAG, "Imported %d of %d records", added, len(records))
	return
}

// SuggestSerialNumber returns the serial label for the next record: the one after the newest record's.
func (s *Store) SuggestSerialNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return NextSerialNumber("")
	}
	return NextSerialNumber(s.records[0].SerialNumber)
}

// NextSerialNumber returns the label following serial: "01" ... "08", then "01" again.
// Anything that is not a label in that range is followed by "01".
func NextSerialNumber(serial string) string {
	n, err := strconv.Atoi(strings.TrimSpace(serial))
	if err != nil || n < 1 || n >= MaxSerialNumber {
		return "01"
	}
	return fmt.Sprintf("%02d", n+1)
}
