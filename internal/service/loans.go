package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/and161185/perpus/internal/batch"
	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
)

// LoanService defines borrow and return operations.
type LoanService interface {
	// Create borrows a book for the session user.
	Create(ctx context.Context, bookID model.ID, borrow, ret model.Date) (model.Loan, error)
	// ListForUser returns all loans of a user.
	ListForUser(ctx context.Context, userID model.ID) ([]model.Loan, error)
	// ResolveTitles maps each referenced book id to its title.
	ResolveTitles(ctx context.Context, loans []model.Loan) map[model.ID]string
	// MarkReturned closes one of the session user's loans.
	MarkReturned(ctx context.Context, loanID model.ID) (model.Loan, error)
}

type LoanServiceImpl struct {
	api     Caller
	id      Identity
	catalog CatalogService
	now     func() time.Time
	limit   int
}

// NewLoanService constructs LoanService. A nil clock means time.Now.
func NewLoanService(api Caller, id Identity, catalog CatalogService, now func() time.Time) *LoanServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &LoanServiceImpl{api: api, id: id, catalog: catalog, now: now, limit: batch.DefaultLimit}
}

// Create validates the dates against today and posts a Borrowed loan.
func (s *LoanServiceImpl) Create(ctx context.Context, bookID model.ID, borrow, ret model.Date) (model.Loan, error) {
	verr := &errs.ValidationError{}
	if bookID.IsZero() {
		verr.Add("bookId", "bookId is required")
	}
	today := model.NewDate(s.now())
	switch {
	case borrow.IsZero():
		verr.Add("borrowDate", "borrow date is required")
	case borrow.Before(today):
		verr.Add("borrowDate", "borrow date cannot be before today")
	}
	switch {
	case ret.IsZero():
		verr.Add("returnDate", "return date is required")
	case !borrow.IsZero() && !ret.After(borrow):
		verr.Add("returnDate", "return date must be after borrow date")
	}
	if err := verr.OrNil(); err != nil {
		return model.Loan{}, err
	}

	sess, err := currentUser(s.id)
	if err != nil {
		return model.Loan{}, err
	}

	loan := model.Loan{
		BookID:     bookID,
		UserID:     sess.UserID,
		BorrowDate: borrow,
		ReturnDate: ret,
		Status:     model.LoanBorrowed,
	}
	out := loan
	if err := s.api.Call(ctx, http.MethodPost, "/peminjaman", loan, &out); err != nil {
		return model.Loan{}, err
	}
	return out, nil
}

func (s *LoanServiceImpl) ListForUser(ctx context.Context, userID model.ID) ([]model.Loan, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	var loans []model.Loan
	if err := s.api.Call(ctx, http.MethodGet, resource("/peminjaman/pengguna", userID), nil, &loans); err != nil {
		return nil, err
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return loans, nil
}

// ResolveTitles fetches one book per distinct id. Failed lookups map to TitleNotFound.
func (s *LoanServiceImpl) ResolveTitles(ctx context.Context, loans []model.Loan) map[model.ID]string {
	ids := make([]model.ID, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.BookID)
	}
	return batch.Resolve(ctx, ids, s.limit, TitleNotFound, func(ctx context.Context, id model.ID) (string, error) {
		b, err := s.catalog.Get(ctx, id)
		if err != nil {
			return "", err
		}
		if b.Title == "" {
			return TitleNotFound, nil
		}
		return b.Title, nil
	})
}

// MarkReturned refetches the session user's loans, then replaces the loan
// with status Returned and the same dates. A loan that is already returned
// is left untouched.
func (s *LoanServiceImpl) MarkReturned(ctx context.Context, loanID model.ID) (model.Loan, error) {
	if err := requireID("loanId", loanID); err != nil {
		return model.Loan{}, err
	}
	sess, err := currentUser(s.id)
	if err != nil {
		return model.Loan{}, err
	}
	loans, err := s.ListForUser(ctx, sess.UserID)
	if err != nil {
		return model.Loan{}, err
	}

	var (
		loan  model.Loan
		found bool
	)
	for _, l := range loans {
		if l.ID == loanID {
			loan, found = l, true
			break
		}
	}
	if !found {
		return model.Loan{}, fmt.Errorf("loan %s: %w", loanID, errs.ErrNotFound)
	}
	if loan.Returned() {
		return loan, nil
	}

	payload := model.Loan{
		BookID:     loan.BookID,
		UserID:     sess.UserID,
		BorrowDate: loan.BorrowDate,
		ReturnDate: loan.ReturnDate,
		Status:     model.LoanReturned,
	}
	out := payload
	out.ID = loan.ID
	if err := s.api.Call(ctx, http.MethodPut, resource("/peminjaman", loanID), payload, &out); err != nil {
		return model.Loan{}, err
	}
	return out, nil
}
