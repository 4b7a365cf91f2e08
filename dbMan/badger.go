package dbMan

import (
	"errors"

	"github.com/Compufreak345/dbg"
	"github.com/dgraph-io/badger/v4"
)

const bTag = dbg.Tag("tankerlog/dbMan/badger.go")

// BadgerPersister keeps the collection under one key of a badger database.
type BadgerPersister struct {
	db  *badger.DB
	key []byte
}

// OpenBadger opens the badger database in dir. An empty dir opens an in-memory database.
func OpenBadger(dir string, key string) (*BadgerPersister, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerPersister{db: db, key: []byte(key)}, nil
}

// Load implements Persister.
func (p *BadgerPersister) Load() (data []byte, err error) {
	err = p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(p.key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		dbg.E(bTag, "Unable to load %s : %s", p.key, err)
	}
	return
}

// Save implements Persister.
func (p *BadgerPersister) Save(data []byte) (err error) {
	err = p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(p.key, data)
	})
	if err != nil {
		dbg.E(bTag, "Unable to save %s : %s", p.key, err)
	}
	return
}

// Close implements Persister.
func (p *BadgerPersister) Close() error {
	return p.db.Close()
}
