// manages the durable key-value entry holding the record collection
package dbMan

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Compufreak345/dbg"
	"github.com/scgdepot/tankerlog/tools"
)

const dTag = dbg.Tag("tankerlog/dbMan.go")

// DefaultKey is the entry name the collection is stored under.
const DefaultKey = "scg_records"

// Backends known to Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const sqliteDriverName = "SQLITE"

var ErrUnknownBackend = errors.New("Unknown store backend")

// Persister reads and writes one durable entry holding the serialized record collection.
// Save replaces the whole entry; a failed Save leaves the previous entry in place.
type Persister interface {
	// Load returns nil data and no error when nothing was saved yet.
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}

// Open returns the Persister for the given backend, storing its data below path.
func Open(backend string, path string, key string) (p Persister, err error) {
	if key == "" {
		key = DefaultKey
	}
	switch backend {
	case BackendBadger, "":
		p, err = OpenBadger(path, key)
	case BackendSQLite:
		p, err = OpenSQLite(path, key)
	case BackendMemory:
		p = NewMemoryPersister()
	default:
		err = fmt.Errorf("%w : %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		dbg.E(dTag, "Failed to open %s store at %s : %s", backend, path, err)
		return nil, err
	}
	dbg.I(dTag, "Opened %s store at %s (key %s)", backend, path, key)
	return
}

// SQLitePersister keeps the collection in the KeyValues-table of a SQLite database.
type SQLitePersister struct {
	dbCon *sql.DB
	key   string
}

// OpenSQLite opens (and creates / migrates if needed) the SQLite database at dbPath.
func OpenSQLite(dbPath string, key string) (p *SQLitePersister, err error) {
	if dbPath != ":memory:" {
		if err = os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return
		}
	}
	dbCon, err := openDbCon(dbPath)
	if err != nil {
		return
	}
	numExec, err := ExecMigrations(dbCon)
	if err != nil {
		dbg.E(dTag, "Failed to migrate record DB at %s : %s", dbPath, err)
		dbCon.Close()
		return
	}
	dbg.D(dTag, "Record DB at %s ready, %d migrations executed", dbPath, numExec)
	return &SQLitePersister{dbCon: dbCon, key: key}, nil
}

// openDbCon tries to open database connection AND validates
func openDbCon(dbPath string) (database *sql.DB, err error) {
	tools.RegisterSqlite(sqliteDriverName)

	dsn := "file:" + dbPath + "?_busy_timeout=10000"
	if dbPath == ":memory:" {
		dsn = "file::memory:"
	}
	database, err = sql.Open(sqliteDriverName, dsn)
	if err != nil {
		dbg.E(dTag, "Failed to create DB handle at openDbCon() : ", err)
		return
	}
	// one writer; also keeps an in-memory database on a single connection
	database.SetMaxOpenConns(1)
	if err = database.Ping(); err != nil {
		dbg.E(dTag, "Failed to keep connection alive at openDbCon() : ", err)
		database.Close()
		return
	}
	if dbPath != ":memory:" {
		if _, err = database.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			dbg.E(dTag, "Error setting pragmas!", err)
			err = nil
		}
	}
	dbg.D(dTag, "Databaseconnection established", dbPath)
	return
}

// Load implements Persister.
func (p *SQLitePersister) Load() (data []byte, err error) {
	err = p.dbCon.QueryRow("SELECT value FROM KeyValues WHERE key=?", p.key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		dbg.E(dTag, "Unable to load %s : %s", p.key, err)
	}
	return
}

// Save implements Persister.
func (p *SQLitePersister) Save(data []byte) (err error) {
	_, err = p.dbCon.Exec("INSERT OR REPLACE INTO KeyValues(key,value,updatedAt) VALUES(?,?,?)",
		p.key, data, time.Now().UnixNano()/int64(time.Millisecond))
	if err != nil {
		dbg.E(dTag, "Unable to save %s : %s", p.key, err)
	}
	return
}

// Close implements Persister.
func (p *SQLitePersister) Close() error {
	return p.dbCon.Close()
}
