// Package service contains the catalog, loan and rating flows built on top
// of the authorized backend client.
package service

import (
	"context"
	"net/url"

	"github.com/and161185/perpus/internal/client"
	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
)

// Caller performs authenticated backend calls.
type Caller interface {
	Call(ctx context.Context, method, path string, body, out any) error
}

var _ Caller = (*client.Client)(nil)

// Identity exposes the current session.
type Identity interface {
	Current() (model.Session, bool)
}

// Placeholders shown when a lookup fails.
const (
	TitleNotFound = "Title not found"
	UnknownUser   = "User"
)

// resource joins a collection path and an escaped id.
func resource(collection string, id model.ID) string {
	return collection + "/" + url.PathEscape(id.String())
}

func requireID(field string, id model.ID) error {
	if id.IsZero() {
		return errs.NewValidationError(field, field+" is required")
	}
	return nil
}

func currentUser(id Identity) (model.Session, error) {
	if id == nil {
		return model.Session{}, errs.ErrUnauthenticated
	}
	s, ok := id.Current()
	if !ok || !s.Valid() {
		return model.Session{}, errs.ErrUnauthenticated
	}
	return s, nil
}
