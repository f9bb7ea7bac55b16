package client

import (
	"context"

	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
)

// SessionSource provides the current session.
type SessionSource interface {
	Current() (model.Session, bool)
}

// Client performs bearer-authenticated calls for the current session.
type Client struct {
	tr   *Transport
	sess SessionSource
}

// New creates a Client.
func New(tr *Transport, sess SessionSource) *Client {
	return &Client{tr: tr, sess: sess}
}

// Call sends an authenticated request. Without a session it fails with
// errs.ErrUnauthenticated before touching the network. A 401/403 answer
// satisfies errors.Is(err, errs.ErrSessionExpired).
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	s, ok := c.sess.Current()
	if !ok || !s.Valid() {
		return errs.ErrUnauthenticated
	}
	return c.tr.Do(ctx, Request{Method: method, Path: path, Token: s.Token, Body: body}, out)
}
