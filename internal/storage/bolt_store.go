package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/samvad-news-pager/internal/domain"
)

const (
	articleBucket      = "articles"
	articleIndexBucket = "article_ids"
	remoteKeyBucket    = "remote_keys"
	orderKeyBytes      = 8
)

// boltStore implements Store backed by BoltDB. Articles are keyed by
// (page, index) so iteration order matches feed order; remote keys are
// keyed by article id. An id index maps each article id to its current
// order key so re-inserted articles replace their earlier row.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: opts.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{articleBucket, articleIndexBucket, remoteKeyBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Pages returns cached pages in remote page order.
func (b *boltStore) Pages() ([]domain.CachedPage, error) {
	var pages []domain.CachedPage
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			page, ok := decodeOrderKey(k)
			if !ok {
				return fmt.Errorf("malformed article order key (%d bytes)", len(k))
			}
			var art domain.Article
			if err := json.Unmarshal(v, &art); err != nil {
				return fmt.Errorf("decode article: %w", err)
			}
			if n := len(pages); n == 0 || pages[n-1].Number != page {
				pages = append(pages, domain.CachedPage{Number: page})
			}
			last := &pages[len(pages)-1]
			last.Articles = append(last.Articles, art)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Articles returns all cached articles in feed order.
func (b *boltStore) Articles() ([]domain.Article, error) {
	pages, err := b.Pages()
	if err != nil {
		return nil, err
	}
	var out []domain.Article
	for _, p := range pages {
		out = append(out, p.Articles...)
	}
	return out, nil
}

// RemoteKey looks up the pagination key for an article id.
func (b *boltStore) RemoteKey(articleID string) (*domain.RemoteKey, error) {
	var key *domain.RemoteKey
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(remoteKeyBucket))
		if bucket == nil {
			return fmt.Errorf("remote key bucket missing")
		}
		value := bucket.Get([]byte(articleID))
		if value == nil {
			return nil
		}
		var rk domain.RemoteKey
		if err := json.Unmarshal(value, &rk); err != nil {
			return fmt.Errorf("decode remote key: %w", err)
		}
		key = &rk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// Counts reports cached article and remote key counts.
func (b *boltStore) Counts() (int, int, error) {
	var articles, keys int
	err := b.db.View(func(tx *bolt.Tx) error {
		ab := tx.Bucket([]byte(articleBucket))
		kb := tx.Bucket([]byte(remoteKeyBucket))
		if ab == nil || kb == nil {
			return fmt.Errorf("store buckets missing")
		}
		articles = ab.Stats().KeyN
		keys = kb.Stats().KeyN
		return nil
	})
	return articles, keys, err
}

// Update runs fn inside one bbolt write transaction.
func (b *boltStore) Update(fn func(tx WriteTx) error) error {
	return b.db.Update(func(btx *bolt.Tx) error {
		return fn(&boltWriteTx{tx: btx})
	})
}

// boltWriteTx implements WriteTx over an open bbolt transaction.
type boltWriteTx struct {
	tx *bolt.Tx
}

func (w *boltWriteTx) ClearArticles() error {
	if err := resetBucket(w.tx, articleBucket); err != nil {
		return err
	}
	return resetBucket(w.tx, articleIndexBucket)
}

func (w *boltWriteTx) ClearRemoteKeys() error {
	return resetBucket(w.tx, remoteKeyBucket)
}

func (w *boltWriteTx) InsertArticles(page int, articles []domain.Article) error {
	if page < 0 {
		return fmt.Errorf("negative page number %d", page)
	}
	bucket := w.tx.Bucket([]byte(articleBucket))
	index := w.tx.Bucket([]byte(articleIndexBucket))
	if bucket == nil || index == nil {
		return fmt.Errorf("article buckets missing")
	}
	for i, art := range articles {
		payload, err := json.Marshal(art)
		if err != nil {
			return fmt.Errorf("encode article %s: %w", art.ID, err)
		}
		orderKey := encodeOrderKey(page, i)
		// The remote repeats articles across pages when the feed shifts
		// between fetches. Keep one row per id: drop the stale position.
		if prev := index.Get([]byte(art.ID)); prev != nil {
			stale := make([]byte, len(prev))
			copy(stale, prev)
			if err := bucket.Delete(stale); err != nil {
				return err
			}
		}
		if err := bucket.Put(orderKey, payload); err != nil {
			return err
		}
		if err := index.Put([]byte(art.ID), orderKey); err != nil {
			return err
		}
	}
	return nil
}

func (w *boltWriteTx) InsertRemoteKeys(keys []domain.RemoteKey) error {
	bucket := w.tx.Bucket([]byte(remoteKeyBucket))
	if bucket == nil {
		return fmt.Errorf("remote key bucket missing")
	}
	for _, key := range keys {
		if key.ArticleID == "" {
			return fmt.Errorf("remote key with empty article id")
		}
		payload, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encode remote key %s: %w", key.ArticleID, err)
		}
		if err := bucket.Put([]byte(key.ArticleID), payload); err != nil {
			return err
		}
	}
	return nil
}

// resetBucket drops and recreates a bucket inside the current transaction.
func resetBucket(tx *bolt.Tx, name string) error {
	if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
		return err
	}
	_, err := tx.CreateBucket([]byte(name))
	return err
}

// encodeOrderKey builds the (page, index) sort key for the article bucket.
func encodeOrderKey(page, idx int) []byte {
	buf := make([]byte, orderKeyBytes)
	binary.BigEndian.PutUint32(buf[:4], uint32(page))
	binary.BigEndian.PutUint32(buf[4:], uint32(idx))
	return buf
}

// decodeOrderKey extracts the page number from an article order key.
func decodeOrderKey(key []byte) (int, bool) {
	if len(key) != orderKeyBytes {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(key[:4])), true
}
