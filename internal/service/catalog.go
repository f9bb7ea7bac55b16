package service

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/and161185/perpus/internal/client"
	"github.com/and161185/perpus/internal/model"
	"github.com/and161185/perpus/internal/validate"
)

// MaxCoverBytes is the largest accepted cover image.
const MaxCoverBytes = 5 << 20

// Multipart part names expected by the backend.
const (
	partBook  = "bukuRequest"
	partCover = "coverImage"
)

// CatalogService defines book catalog operations.
type CatalogService interface {
	// List returns all books in backend order.
	List(ctx context.Context) ([]model.Book, error)
	// Get returns one book; errs.ErrNotFound when the backend has none.
	Get(ctx context.Context, id model.ID) (model.Book, error)
	// Create validates and uploads a new book with an optional cover.
	Create(ctx context.Context, in model.BookInput, cover *model.CoverImage) (model.Book, error)
	// Update replaces a book's fields and optionally its cover.
	Update(ctx context.Context, id model.ID, in model.BookInput, cover *model.CoverImage) (model.Book, error)
	// Delete removes a book.
	Delete(ctx context.Context, id model.ID) error
}

type CatalogServiceImpl struct {
	api Caller
	v   *validate.Validator
}

// NewCatalogService constructs CatalogService. A nil validator gets the default one.
func NewCatalogService(api Caller, v *validate.Validator) *CatalogServiceImpl {
	if v == nil {
		v = validate.New()
	}
	return &CatalogServiceImpl{api: api, v: v}
}

func (s *CatalogServiceImpl) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := s.api.Call(ctx, http.MethodGet, "/buku", nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

func (s *CatalogServiceImpl) Get(ctx context.Context, id model.ID) (model.Book, error) {
	if err := requireID("id", id); err != nil {
		return model.Book{}, err
	}
	var b model.Book
	if err := s.api.Call(ctx, http.MethodGet, resource("/buku", id), nil, &b); err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (s *CatalogServiceImpl) Create(ctx context.Context, in model.BookInput, cover *model.CoverImage) (model.Book, error) {
	body, err := s.bookForm(in, cover)
	if err != nil {
		return model.Book{}, err
	}
	out := bookFromInput("", in)
	if err := s.api.Call(ctx, http.MethodPost, "/buku", body, &out); err != nil {
		return model.Book{}, err
	}
	return out, nil
}

func (s *CatalogServiceImpl) Update(ctx context.Context, id model.ID, in model.BookInput, cover *model.CoverImage) (model.Book, error) {
	if err := requireID("id", id); err != nil {
		return model.Book{}, err
	}
	body, err := s.bookForm(in, cover)
	if err != nil {
		return model.Book{}, err
	}
	out := bookFromInput(id, in)
	if err := s.api.Call(ctx, http.MethodPut, resource("/buku", id), body, &out); err != nil {
		return model.Book{}, err
	}
	return out, nil
}

func (s *CatalogServiceImpl) Delete(ctx context.Context, id model.ID) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	return s.api.Call(ctx, http.MethodDelete, resource("/buku", id), nil, nil)
}

// bookForm validates the input and builds the multipart body.
func (s *CatalogServiceImpl) bookForm(in model.BookInput, cover *model.CoverImage) (*client.Multipart, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)

	verr := s.v.Collect(in)
	ctype, msg := coverContentType(cover)
	if msg != "" {
		verr.Add(partCover, msg)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var m client.Multipart
	if err := m.AddJSON(partBook, in); err != nil {
		return nil, err
	}
	if cover != nil {
		name := cover.Filename
		if name == "" {
			name = "cover"
		}
		m.AddFile(partCover, filepath.Base(name), ctype, cover.Data)
	}
	return &m, nil
}

// coverContentType resolves the cover's media type: declared, then by
// extension, then sniffed. It returns a message when the cover is rejected.
func coverContentType(c *model.CoverImage) (string, string) {
	if c == nil {
		return "", ""
	}
	if len(c.Data) == 0 {
		return "", "cover image is empty"
	}
	if len(c.Data) > MaxCoverBytes {
		return "", fmt.Sprintf("cover image must be at most %d MB", MaxCoverBytes>>20)
	}

	ct := c.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(c.Filename)))
	}
	if ct == "" {
		ct = mimetype.Detect(c.Data).String()
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || !strings.HasPrefix(mt, "image/") {
		return "", "cover image must be an image file"
	}
	return mt, ""
}

func bookFromInput(id model.ID, in model.BookInput) model.Book {
	return model.Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		PublicationYear: in.PublicationYear,
		ISBN:            in.ISBN,
		CopiesAvailable: in.CopiesAvailable,
	}
}
