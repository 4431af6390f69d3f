package database

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"modcase-bot/model"
)

var afkBucket = []byte("afk")

// AFKStore keeps AFK statuses in a bbolt file, one JSON document per user.
type AFKStore struct {
	db *bolt.DB
}

// OpenAFKStore opens (or creates) the bbolt file at path.
func OpenAFKStore(path string) (*AFKStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open afk store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(afkBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create afk bucket: %w", err)
	}
	return &AFKStore{db: db}, nil
}

func (s *AFKStore) Close() error {
	return s.db.Close()
}

// Set stores status, replacing any previous one for the user.
func (s *AFKStore) Set(status model.AFKStatus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bts, err := json.Marshal(status)
		if err != nil {
			return err
		}
		return tx.Bucket(afkBucket).Put([]byte(status.UserID), bts)
	})
}

// Get returns the user's status, or nil if they are not AFK.
func (s *AFKStore) Get(userID string) (*model.AFKStatus, error) {
	var status *model.AFKStatus
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(afkBucket).Get([]byte(userID))
		if v == nil {
			return nil
		}
		status = &model.AFKStatus{}
		return json.Unmarshal(v, status)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read afk status for %s: %w", userID, err)
	}
	return status, nil
}

// Clear removes and returns the user's status, or nil if they were not AFK.
func (s *AFKStore) Clear(userID string) (*model.AFKStatus, error) {
	var status *model.AFKStatus
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(afkBucket)
		v := b.Get([]byte(userID))
		if v == nil {
			return nil
		}
		status = &model.AFKStatus{}
		if err := json.Unmarshal(v, status); err != nil {
			return err
		}
		return b.Delete([]byte(userID))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear afk status for %s: %w", userID, err)
	}
	return status, nil
}

// AddMention appends a mention to an AFK user's status. It reports false if the user is not AFK.
func (s *AFKStore) AddMention(userID string, mention model.AFKMention) (bool, error) {
	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(afkBucket)
		v := b.Get([]byte(userID))
		if v == nil {
			return nil
		}
		var status model.AFKStatus
		if err := json.Unmarshal(v, &status); err != nil {
			return err
		}
		status.Mentions = append(status.Mentions, mention)
		bts, err := json.Marshal(status)
		if err != nil {
			return err
		}
		found = true
		return b.Put([]byte(userID), bts)
	})
	if err != nil {
		return false, fmt.Errorf("failed to record mention for %s: %w", userID, err)
	}
	return found, nil
}
