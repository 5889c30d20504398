package testcases

import (
	"fmt"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cgast/nrfu/pkg/nrfu"
)

// BoltStore keeps test case documents in a bbolt database. Each device has
// its own bucket; keys are domain names and values are JSON documents in
// the same shape DirStore writes.
type BoltStore struct {
	db     *bolt.DB
	mu     sync.RWMutex
	device []byte
	vars   map[string]string
}

// NewBoltStore opens (or creates) the database at path and scopes the store
// to device's bucket.
func NewBoltStore(path, device string, vars map[string]string) (*BoltStore, error) {
	if device == "" {
		return nil, fmt.Errorf("bolt store: device is required")
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(device)); err != nil {
			return fmt.Errorf("create bucket %s: %w", device, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db, device: []byte(device), vars: vars}, nil
}

func (s *BoltStore) Load(domain string) ([]nrfu.TestCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.device)
		if b == nil {
			return fmt.Errorf("bucket not found: %s", s.device)
		}
		if v := b.Get([]byte(domain)); v != nil {
			// v is only valid inside the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s: %w", domain, ErrNotFound)
	}
	return Decode(data, FormatJSON, domain, s.vars)
}

func (s *BoltStore) Save(domain string, cases []nrfu.TestCase) error {
	data, err := Encode(cases)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.device)
		if b == nil {
			return fmt.Errorf("bucket not found: %s", s.device)
		}
		return b.Put([]byte(domain), data)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", domain, err)
	}
	logger.WithField("device", string(s.device)).WithField("domain", domain).
		WithField("count", len(cases)).Info("Saved test cases")
	return nil
}

func (s *BoltStore) Domains() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.device)
		if b == nil {
			return fmt.Errorf("bucket not found: %s", s.device)
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Devices lists every device that has a bucket in the database.
func (s *BoltStore) Devices() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
