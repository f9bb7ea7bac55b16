package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/and161185/perpus/internal/model"
)

func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"buku"},
		Short:   "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newBooksListCmd(a),
		newBooksGetCmd(a),
		newBooksAddCmd(a),
		newBooksEditCmd(a),
		newBooksRmCmd(a),
	)
	return cmd
}

func newBooksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := a.catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(a.stdout, books)
		},
	}
}

func newBooksGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.catalog.Get(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(a.stdout, b)
		},
	}
}

// bookFlags are the editable fields shared by add and edit.
type bookFlags struct {
	in    model.BookInput
	cover string
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Title, "title", "", "Title (2-100 characters)")
	fs.StringVar(&f.in.Author, "author", "", "Author (2-50 letters, spaces, . , ' -)")
	fs.IntVar(&f.in.PublicationYear, "year", 0, "Publication year")
	fs.StringVar(&f.in.ISBN, "isbn", "", "ISBN, 7 digits")
	fs.IntVar(&f.in.CopiesAvailable, "copies", 0, "Copies available (0-1000)")
	fs.StringVar(&f.cover, "cover", "", "Cover image file ('-' = stdin)")
}

// merge overlays the flags that were set onto base.
func (f *bookFlags) merge(fs *pflag.FlagSet, base model.BookInput) model.BookInput {
	if fs.Changed("title") {
		base.Title = f.in.Title
	}
	if fs.Changed("author") {
		base.Author = f.in.Author
	}
	if fs.Changed("year") {
		base.PublicationYear = f.in.PublicationYear
	}
	if fs.Changed("isbn") {
		base.ISBN = f.in.ISBN
	}
	if fs.Changed("copies") {
		base.CopiesAvailable = f.in.CopiesAvailable
	}
	return base
}

func (f *bookFlags) coverImage(a *app) (*model.CoverImage, error) {
	if f.cover == "" {
		return nil, nil
	}
	data, err := readAll(a.stdin, f.cover)
	if err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	name := filepath.Base(f.cover)
	if f.cover == "-" {
		name = ""
	}
	return &model.CoverImage{Filename: name, Data: data}, nil
}

func newBooksAddCmd(a *app) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cover, err := f.coverImage(a)
			if err != nil {
				return err
			}
			b, err := a.catalog.Create(cmd.Context(), f.in, cover)
			if err != nil {
				return err
			}
			return printJSON(a.stdout, b)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newBooksEditCmd(a *app) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace a book's fields; unset flags keep current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			cur, err := a.catalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := f.merge(cmd.Flags(), model.BookInput{
				Title:           cur.Title,
				Author:          cur.Author,
				PublicationYear: cur.PublicationYear,
				ISBN:            cur.ISBN,
				CopiesAvailable: cur.CopiesAvailable,
			})
			cover, err := f.coverImage(a)
			if err != nil {
				return err
			}
			b, err := a.catalog.Update(cmd.Context(), id, in, cover)
			if err != nil {
				return err
			}
			return printJSON(a.stdout, b)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

var errAborted = errors.New("aborted")

func newBooksRmCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			if !yes && !confirm(a.stdin, a.stderr, fmt.Sprintf("Delete book %s?", id)) {
				return errAborted
			}
			if err := a.catalog.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
