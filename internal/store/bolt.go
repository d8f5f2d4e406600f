// Package store persists conversation histories so a chat can be resumed in a
// later session.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MegaGrindStone/ollamachat/internal/models"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned by Load for an unknown conversation ID.
var ErrNotFound = errors.New("store: conversation not found")

const conversationsBucket = "conversations"

// Bolt implements conversation persistence using a BoltDB backend. Each
// conversation is stored as a JSON-encoded message slice keyed by its ID.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates a Bolt store backed by the file at path. The database file is
// created with 0600 permissions if it doesn't exist, and the required bucket is
// initialized on open.
func NewBolt(path string) (Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return Bolt{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(conversationsBucket))
		return err
	})

	return Bolt{db: db}, err
}

// Close releases the underlying database file.
func (b Bolt) Close() error {
	return b.db.Close()
}

// Save stores the full message history of a conversation, replacing any
// previously stored history under the same ID.
func (b Bolt) Save(id string, messages []models.Message) error {
	v, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(conversationsBucket)).Put([]byte(id), v)
	})
}

// Load retrieves the message history of a conversation, or ErrNotFound.
func (b Bolt) Load(id string) ([]models.Message, error) {
	var messages []models.Message
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(conversationsBucket)).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &messages); err != nil {
			return fmt.Errorf("failed to unmarshal messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// List returns the IDs of all stored conversations in key order.
func (b Bolt) List() ([]string, error) {
	var ids []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(conversationsBucket)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes a stored conversation. Deleting an unknown ID is not an error.
func (b Bolt) Delete(id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(conversationsBucket)).Delete([]byte(id))
	})
}
