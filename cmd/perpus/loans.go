package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
)

func newLoansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "loans",
		Aliases: []string{"peminjaman"},
		Short:   "Borrow and return books",
	}
	cmd.AddCommand(newLoansBorrowCmd(a), newLoansListCmd(a), newLoansReturnCmd(a))
	return cmd
}

func parseDateFlag(field, v string) (model.Date, error) {
	if v == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return model.Date{}, errs.NewValidationError(field, "must be a date like 2006-01-02")
	}
	return d, nil
}

func newLoansBorrowCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "borrow BOOK_ID",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = time.Now().Format(model.DateLayout)
			}
			borrow, err := parseDateFlag("borrowDate", from)
			if err != nil {
				return err
			}
			ret, err := parseDateFlag("returnDate", to)
			if err != nil {
				return err
			}
			loan, err := a.loans.Create(cmd.Context(), model.ID(args[0]), borrow, ret)
			if err != nil {
				return err
			}
			return printJSON(a.stdout, loan)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Borrow date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "Return date YYYY-MM-DD")
	return cmd
}

type loanRow struct {
	model.Loan
	Title string `json:"judul"`
}

func newLoansListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your loans with book titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := a.requireSession()
			if err != nil {
				return err
			}
			loans, err := a.loans.ListForUser(cmd.Context(), uid)
			if err != nil {
				return err
			}
			titles := a.loans.ResolveTitles(cmd.Context(), loans)
			rows := make([]loanRow, 0, len(loans))
			for _, l := range loans {
				rows = append(rows, loanRow{Loan: l, Title: titles[l.BookID]})
			}
			return printJSON(a.stdout, rows)
		},
	}
}

func newLoansReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return LOAN_ID",
		Short: "Mark a loan as returned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := a.loans.MarkReturned(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "returned; rate it with `perpus ratings add %s --score N --comment TEXT`\n", loan.BookID)
			return printJSON(a.stdout, loan)
		},
	}
}
