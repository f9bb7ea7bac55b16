package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/perpus/internal/client"
	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
)

// Unique-constraint names the backend reports on duplicate sign-ups.
const (
	uniqueUsernameKey = "uk_58qkm9mhgl2dp72xniogakhxf"
	uniqueEmailKey    = "uk_ibj7stm8ubc1374kbho8fihpt"
)

// Register creates a backend account. It does not log in.
func (s *Store) Register(ctx context.Context, in model.RegisterInput) error {
	if err := s.v.Struct(in); err != nil {
		return err
	}
	err := s.tr.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   in,
	}, nil)
	if err != nil {
		return classifyRegisterError(err)
	}
	s.log.Info("registered", zap.String("username", in.Username))
	return nil
}

// classifyRegisterError maps duplicate-key failures onto
// errs.ErrUsernameTaken and errs.ErrEmailTaken.
func classifyRegisterError(err error) error {
	var re *errs.RequestError
	if !errors.As(err, &re) {
		return err
	}
	body := strings.ToLower(string(re.Body))
	if !strings.Contains(body, "duplicate entry") {
		return err
	}
	switch {
	case strings.Contains(body, uniqueUsernameKey):
		return errs.ErrUsernameTaken
	case strings.Contains(body, uniqueEmailKey):
		return errs.ErrEmailTaken
	}
	return err
}
