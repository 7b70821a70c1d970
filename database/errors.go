package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned only when the requested document does not exist
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned when a write would break a unique key
var ErrDuplicate = errors.New("duplicate key")

func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func translateDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
