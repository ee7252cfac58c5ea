package cache

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

func (c *Cache) get(key []byte) (*Listing, error) {
	var l Listing
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(l.unmarshal)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// scan calls fn with each key under prefix. The slice is reused between
// calls.
func (c *Cache) scan(prefix []byte, fn func(key []byte)) error {
	return c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			fn(it.Item().Key())
		}
		return nil
	})
}

// drop deletes the key itself, if present, and every key under prefix. A
// single transaction can overflow on large subtrees, so deletes go through a
// write batch.
func (c *Cache) drop(key, prefix []byte) error {
	var doomed [][]byte
	if key != nil {
		doomed = append(doomed, key)
	}
	if err := c.scan(prefix, func(k []byte) {
		doomed = append(doomed, clone(k))
	}); err != nil {
		return err
	}
	if len(doomed) == 0 {
		return nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range doomed {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// checkSchema empties the database unless it carries the current schema
// marker, then stamps it.
func (c *Cache) checkSchema() error {
	var have string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaKey)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			have = string(v)
			return nil
		})
	})
	switch {
	case err == nil && have == schemaVersion:
		return nil
	case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
		return err
	}
	if have != "" {
		logger.Info("cache schema changed, discarding listings", "from", have, "to", schemaVersion)
	}
	if err := c.db.DropAll(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(schemaKey, []byte(schemaVersion))
	})
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
