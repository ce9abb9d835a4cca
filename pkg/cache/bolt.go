package cache

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/agentstation/apidrift/pkg/errors"
)

const bucketName = "normalized"

// Bolt is a Cache persisted in a bbolt database file.
type Bolt struct {
	db   *bolt.DB
	path string
}

// OpenBolt opens or creates the cache database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("init", path, err)
	}
	return &Bolt{db: db, path: path}, nil
}

// Path returns the database file path.
func (b *Bolt) Path() string {
	return b.path
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Get implements Cache.
func (b *Bolt) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return bolt.ErrBucketNotFound
		}
		if data := bucket.Get([]byte(key)); data != nil {
			// Values are only valid for the life of the transaction.
			out = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.WrapIO("read", b.path, err)
	}
	return out, out != nil, nil
}

// Set implements Cache.
func (b *Bolt) Set(key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
	return errors.WrapIO("write", b.path, err)
}

// Delete implements Cache.
func (b *Bolt) Delete(key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	return errors.WrapIO("delete", b.path, err)
}

// Clear implements Cache.
func (b *Bolt) Clear() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	return errors.WrapIO("clear", b.path, err)
}

// Len implements Cache.
func (b *Bolt) Len() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketName)); bucket != nil {
			n = bucket.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return 0, errors.WrapIO("read", b.path, err)
	}
	return n, nil
}
