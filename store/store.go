// Package store provides an optional cache of computed results in a
// bolt database. Results are keyed by a digest of all the inputs.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/mutsim/codon"
	"bitbucket.org/Davydov/mutsim/subst"
)

// log is the global logging variable.
var log = logging.MustGetLogger("store")

// Buckets for analytic and simulated results.
var (
	ANALYTIC  = []byte("analytic")
	SIMULATED = []byte("simulated")
)

// Key computes a key from the inputs of a computation. Trials,
// workers and seed are only used for simulations and should be zero
// otherwise.
func Key(seq *codon.Sequence, m *subst.Matrix, rounds int, region *codon.Region, trials, workers int, seed int64) []byte {
	h := sha256.New()
	for _, c := range seq.Codons {
		h.Write([]byte{byte(c)})
	}
	fmt.Fprintf(h, "|gc=%d|R=%d|", seq.GCode.ID, rounds)
	for _, row := range m.Rows() {
		for _, v := range row {
			fmt.Fprintf(h, "%x,", v)
		}
	}
	if region != nil {
		fmt.Fprintf(h, "|roi=%v", region)
	}
	if trials > 0 {
		fmt.Fprintf(h, "|trials=%d|workers=%d|seed=%d", trials, workers, seed)
	}
	return []byte(hex.EncodeToString(h.Sum(nil)))
}

// Store saves and loads results.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a database file.
func Open(fileName string) (*Store, error) {
	db, err := bolt.Open(fileName, 0666, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New creates a Store using an opened database. A nil database
// disables the cache.
func New(db *bolt.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save serializes v to JSON and stores it.
func (s *Store) Save(bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Error serializing result", err)
		return err
	}
	err = SaveData(s.db, bucket, key, data)
	if err != nil {
		log.Error("Error saving result", err)
	}
	return err
}

// Load loads a stored value into v. It returns false if there is no
// value for the key.
func (s *Store) Load(bucket, key []byte, v interface{}) (bool, error) {
	data, err := LoadData(s.db, bucket, key)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	log.Infof("Found cached result %s", key)
	return true, nil
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, bucket, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		err = b.Put(key, data)
		return err
	})
	return err
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, bucket, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
