package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

const anonymousBucket = "anonymous"

// Store keeps the activity journal in a BoltDB file: one nested bucket per
// user under the root bucket, keyed by a zero-padded timestamp so cursor
// order is chronological.
type Store struct {
	db   *bolt.DB
	root []byte
}

var _ repository.ActivityRepository = (*Store)(nil)

// Open initializes the BoltDB file and ensures the root bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "activity"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:   db,
		root: []byte(bucket),
	}, nil
}

// Append records an activity, filling in its id and timestamp when missing.
func (s *Store) Append(_ context.Context, activity domain.Activity) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if activity.Name == "" {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(activity)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		userBucket, err := tx.Bucket(s.root).CreateBucketIfNotExists(userBucketName(activity.UserID))
		if err != nil {
			return err
		}
		return userBucket.Put(buildKey(activity), payload)
	})
}

// ListByUser returns up to limit activities of the user, newest first.
func (s *Store) ListByUser(_ context.Context, userID string, limit int) ([]domain.Activity, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	activities := make([]domain.Activity, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		userBucket := tx.Bucket(s.root).Bucket(userBucketName(userID))
		if userBucket == nil {
			return nil
		}
		c := userBucket.Cursor()
		for k, v := c.Last(); k != nil && len(activities) < limit; k, v = c.Prev() {
			var activity domain.Activity
			if err := json.Unmarshal(v, &activity); err != nil {
				continue
			}
			activities = append(activities, activity)
		}
		return nil
	})
	return activities, err
}

// Size returns the number of journal entries across all users.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.root).ForEachBucket(func(name []byte) error {
			count += tx.Bucket(s.root).Bucket(name).Stats().KeyN
			return nil
		})
	})
	return count, err
}

// Cleanup removes entries recorded before olderThan and returns how many
// were deleted.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	cutoff := olderThan.UnixNano()
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.root)
		return root.ForEachBucket(func(name []byte) error {
			c := root.Bucket(name).Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.First() {
				if keyTime(k) >= cutoff {
					break
				}
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
			return nil
		})
	})
	return removed, err
}

// Ping reports whether the journal file is open and readable.
func (s *Store) Ping(_ context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.root) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func userBucketName(userID string) []byte {
	if userID == "" {
		return []byte(anonymousBucket)
	}
	return []byte(userID)
}

func buildKey(activity domain.Activity) []byte {
	return []byte(fmt.Sprintf("%020d_%s", activity.CreatedAt.UnixNano(), activity.ID))
}

func keyTime(key []byte) int64 {
	prefix, _, _ := strings.Cut(string(key), "_")
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0
	}
	return nanos
}
