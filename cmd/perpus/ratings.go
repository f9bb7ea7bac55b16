package main

import (
	"github.com/spf13/cobra"

	"github.com/and161185/perpus/internal/model"
	"github.com/and161185/perpus/internal/service"
)

func newRatingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ratings",
		Aliases: []string{"rating"},
		Short:   "Read and write book reviews",
	}
	cmd.AddCommand(newRatingsListCmd(a), newRatingsAddCmd(a))
	return cmd
}

type ratingsView struct {
	Count   int              `json:"count"`
	Average *float64         `json:"average"`
	Reviews []service.Review `json:"reviews"`
}

func newRatingsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list BOOK_ID",
		Short: "Show a book's ratings and average",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.ratings.ListForBook(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			names := a.ratings.ResolveReviewerNames(cmd.Context(), sum.Ratings)
			return printJSON(a.stdout, ratingsView{
				Count:   sum.Count,
				Average: sum.Average,
				Reviews: service.Reviews(sum.Ratings, names),
			})
		},
	}
}

func newRatingsAddCmd(a *app) *cobra.Command {
	var (
		score   int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "add BOOK_ID",
		Short: "Rate a book (1-5) with a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.requireSession()
			if err != nil {
				return err
			}
			r, err := a.ratings.Submit(cmd.Context(), model.ID(args[0]), uid, score, comment)
			if err != nil {
				return err
			}
			return printJSON(a.stdout, r)
		},
	}
	cmd.Flags().IntVarP(&score, "score", "s", 0, "Score from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Comment, up to 500 characters")
	return cmd
}
