package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/perpus/internal/client"
	"github.com/and161185/perpus/internal/config"
	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/logging"
	"github.com/and161185/perpus/internal/model"
	"github.com/and161185/perpus/internal/service"
	"github.com/and161185/perpus/internal/session"
	"github.com/and161185/perpus/internal/storage"
	"github.com/and161185/perpus/internal/validate"
)

// app holds the wiring shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	opts       *config.Options
	log        *zap.Logger
	state      storage.Store
	sess       *session.Store

	catalog service.CatalogService
	loans   service.LoanService
	ratings service.RatingService
}

// skipInit marks commands that need no backend or state.
const skipInit = "perpus.skip-init"

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Annotations[skipInit] == "true" || a.sess != nil {
		return nil
	}

	opts, err := config.Load(cmd.Flags(), a.configFile)
	if err != nil {
		return err
	}
	log, err := logging.New(opts.Log.Level, opts.Log.Format)
	if err != nil {
		return err
	}
	st, err := storage.Open(opts.State.Driver, opts.State.Dir, opts.State.Encrypt)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	tr, err := client.NewTransport(opts.APIURL, opts.Timeout, log)
	if err != nil {
		_ = st.Close()
		return err
	}

	sess := session.New(st, tr, log)
	sess.Restore(cmd.Context())

	api := client.New(tr, sess)
	v := validate.New()
	a.opts, a.log, a.state, a.sess = opts, log, st, sess
	a.catalog = service.NewCatalogService(api, v)
	a.loans = service.NewLoanService(api, sess, a.catalog, nil)
	a.ratings = service.NewRatingService(api, v)

	log.Debug("ready",
		zap.String("api", tr.BaseURL()),
		zap.String("state", opts.State.Driver),
		zap.Bool("encrypted", opts.State.Encrypt),
	)
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.state != nil {
		_ = a.state.Close()
	}
}

// explain turns err into a message for the terminal. A rejected token
// also drops the saved session.
func (a *app) explain(ctx context.Context, err error) string {
	var (
		ve *errs.ValidationError
		ae *errs.AuthenticationError
	)
	switch {
	case errors.As(err, &ve):
		fields := make([]string, 0, len(ve.Fields))
		for f := range ve.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		var b strings.Builder
		b.WriteString("invalid input")
		for _, f := range fields {
			fmt.Fprintf(&b, "\n  %s: %s", f, ve.Fields[f])
		}
		return b.String()
	case errors.As(err, &ae):
		return ae.Message
	case errors.Is(err, errs.ErrSessionExpired):
		if a.sess != nil {
			a.sess.Invalidate(ctx)
		}
		return errs.ErrSessionExpired.Error() + " (run `perpus login`)"
	case errors.Is(err, errs.ErrUnauthenticated):
		return "not logged in (run `perpus login`)"
	case errors.Is(err, errs.ErrNotFound):
		return "not found"
	}
	return err.Error()
}

// requireSession returns the session user or errs.ErrUnauthenticated.
func (a *app) requireSession() (model.ID, error) {
	s, ok := a.sess.Current()
	if !ok {
		return "", errs.ErrUnauthenticated
	}
	return s.UserID, nil
}
