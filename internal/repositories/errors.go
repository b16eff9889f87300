package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the requested document does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write
	ErrDuplicate = errors.New("duplicate key")
)

func mapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
