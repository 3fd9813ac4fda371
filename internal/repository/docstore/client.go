// Package docstore implements the repository interfaces on Cloud Firestore,
// using the "checkins" and "settings" collections.
package docstore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/smartfit/internal/errs"
)

// Collection names.
const (
	CheckinsCollection = "checkins"
	SettingsCollection = "settings"
)

// Store wraps a Firestore client shared by the repositories.
// Now supplies audit timestamps; nil means time.Now.
type Store struct {
	Client *firestore.Client
	Now    func() time.Time
}

// New wraps an existing client.
func New(client *firestore.Client) *Store { return &Store{Client: client} }

// Close releases the client.
func (s *Store) Close() error { return s.Client.Close() }

// Ping reads at most one check-in document to confirm the backend answers.
func (s *Store) Ping(ctx context.Context) error {
	it := s.Client.Collection(CheckinsCollection).Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// notFound translates the gRPC NotFound status returned by document reads.
func notFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return errs.ErrNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(notFound(err), errs.ErrNotFound)
}
