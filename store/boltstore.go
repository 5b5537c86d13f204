package store

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libmint-go/actor"
)

var (
	bucketEngines  = []byte("engines")
	bucketBalances = []byte("balances")
)

// BoltStore wraps a bbolt database holding engine snapshots and external balances.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEngines, bucketBalances} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Ledger returns a payment rail backed by this database.
func (s *BoltStore) Ledger() *BoltLedger { return &BoltLedger{db: s.db} }

// Save replaces the snapshot stored under snap.Name in a single transaction.
func (s *BoltStore) Save(snap *Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	data, err := encodeGob(snap)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEngines).Put([]byte(snap.Name), data); err != nil {
			return fmt.Errorf("boltstore: put snapshot: %w", err)
		}
		return nil
	})
}

// Load returns the snapshot stored under name.
func (s *BoltStore) Load(name string) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEngines).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
		}
		if err := decodeGob(data, &snap); err != nil {
			return fmt.Errorf("boltstore: decode snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Names returns the stored engine names in key order.
func (s *BoltStore) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEngines).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list engines: %w", err)
	}
	return names, nil
}

// ---------------------------------------------------------------------------
// BoltLedger is a persistent payment rail.
// ---------------------------------------------------------------------------

// BoltLedger tracks external balances in bbolt. It satisfies payrail.Rail.
type BoltLedger struct {
	db *bbolt.DB
}

// Transfer credits amount to to in one bolt transaction.
func (l *BoltLedger) Transfer(ctx context.Context, to actor.Actor, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBalances)
		bal, err := decodeBalance(b.Get(to[:]))
		if err != nil {
			return err
		}
		bal.Add(bal, amount)
		if err := b.Put(to[:], []byte(bal.String())); err != nil {
			return fmt.Errorf("boltstore: put balance: %w", err)
		}
		return nil
	})
}

// Balance returns the external balance of a.
func (l *BoltLedger) Balance(a actor.Actor) (*big.Int, error) {
	var bal *big.Int
	err := l.db.View(func(tx *bbolt.Tx) error {
		var err error
		bal, err = decodeBalance(tx.Bucket(bucketBalances).Get(a[:]))
		return err
	})
	if err != nil {
		return nil, err
	}
	return bal, nil
}

func decodeBalance(data []byte) (*big.Int, error) {
	if data == nil {
		return new(big.Int), nil
	}
	bal, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCorruptBalance, data)
	}
	return bal, nil
}
