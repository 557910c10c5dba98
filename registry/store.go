package registry

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/util"
)

// Store persists Registry sources to a single bbolt bucket, keyed by
// qualified name. It durably survives process restarts; it never sees or
// stores live FSM/conductor state, only the composition sources Put
// registers - running executions stay in memory and travel between
// processes solely through the $resume token the conductor package hands
// back to the host.
type Store struct {
	Debug    bool
	filename string
	db       *bbolt.DB
}

var sourcesBucket = []byte("sources")

// NewStore opens (creating if necessary) a bbolt database at filename.
func NewStore(filename string) (*Store, error) {
	db, err := bbolt.Open(filename, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sourcesBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{filename: filename, db: db}, nil
}

// Close releases the underlying bbolt database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) logf(format string, args ...any) {
	if !s.Debug {
		return
	}
	util.Logging = true
	util.Logf("registry store: "+format, args...)
}

// Save writes src durably under its qualified name.
func (s *Store) Save(src *Source) error {
	qualified, err := compose.ParseName(src.Name)
	if err != nil {
		return err
	}
	clone := *src
	clone.Name = qualified
	js, err := json.Marshal(&clone)
	if err != nil {
		return err
	}
	s.logf("saving %s (%d bytes)", qualified, len(js))
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sourcesBucket).Put([]byte(qualified), js)
	})
}

// Load reads back a previously saved Source by qualified name.
func (s *Store) Load(name string) (*Source, error) {
	qualified, err := compose.ParseName(name)
	if err != nil {
		return nil, err
	}
	var src *Source
	err = s.db.View(func(tx *bbolt.Tx) error {
		bs := tx.Bucket(sourcesBucket).Get([]byte(qualified))
		if bs == nil {
			return nil
		}
		src = &Source{}
		return json.Unmarshal(bs, src)
	})
	return src, err
}

// LoadAll reads every Source the store has persisted, for repopulating a
// Registry at startup.
func (s *Store) LoadAll() ([]*Source, error) {
	var out []*Source
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sourcesBucket)
		return b.ForEach(func(k, v []byte) error {
			var src Source
			if err := json.Unmarshal(v, &src); err != nil {
				return err
			}
			out = append(out, &src)
			return nil
		})
	})
	return out, err
}

// Delete removes a persisted Source by qualified name.
func (s *Store) Delete(name string) error {
	qualified, err := compose.ParseName(name)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sourcesBucket).Delete([]byte(qualified))
	})
}
