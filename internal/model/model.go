// Package model defines the catalog entities exchanged with the backend.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/and161185/perpus/internal/pkg/json"
)

// ID is an opaque backend identifier. The backend emits numeric ids, but some
// endpoints accept or return them as strings, so both JSON forms are accepted.
type ID string

// String returns the identifier as a string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// MarshalJSON emits numeric ids as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if isCanonicalInt(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// isCanonicalInt reports whether s is a non-negative integer without sign or
// leading zeros, i.e. a valid JSON number that round-trips unchanged.
func isCanonicalInt(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		v, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		*id = ID(v)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// DateLayout is the calendar-date wire format of loan dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct{ time.Time }

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return err
	}
	// some endpoints return full timestamps
	if len(v) > len(DateLayout) {
		v = v[:len(DateLayout)]
	}
	p, err := ParseDate(v)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Session is the authenticated identity held by the client.
type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	UserID    ID        `json:"idPengguna"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"` // token exp claim, informational only
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool { return s.Token != "" }

// Book is a catalog record.
type Book struct {
	ID              ID     `json:"idBuku"`
	Title           string `json:"judul"`
	Author          string `json:"penulis"`
	PublicationYear int    `json:"tahunTerbit"`
	ISBN            string `json:"isbn"`
	CopiesAvailable int    `json:"jumlahBuku"`
	CoverImageURL   string `json:"gambar,omitempty"`
}

// BookInput holds the editable book fields, validated before create/update.
type BookInput struct {
	Title           string `json:"judul" form:"title" validate:"required,notblank,min=2,max=100"`
	Author          string `json:"penulis" form:"author" validate:"required,notblank,min=2,max=50,authorname"`
	PublicationYear int    `json:"tahunTerbit" form:"publicationYear" validate:"required,pubyear"`
	ISBN            string `json:"isbn" form:"isbn" validate:"omitempty,isbn7"`
	CopiesAvailable int    `json:"jumlahBuku" form:"copiesAvailable" validate:"min=0,max=1000"`
}

// CoverImage is an optional image uploaded with a book.
type CoverImage struct {
	Filename    string
	ContentType string // detected when empty
	Data        []byte
}

// LoanStatus is the wire value of a loan's state.
type LoanStatus string

const (
	LoanBorrowed LoanStatus = "Dipinjam"
	LoanReturned LoanStatus = "Dikembalikan"
)

// Loan is a borrow record linking a user and a book.
type Loan struct {
	ID         ID         `json:"idPeminjaman,omitempty"`
	BookID     ID         `json:"buku"`
	UserID     ID         `json:"pengguna"`
	BorrowDate Date       `json:"tanggalPinjam"`
	ReturnDate Date       `json:"tanggalKembali"`
	Status     LoanStatus `json:"status"`
}

// Returned reports whether the loan is closed.
func (l Loan) Returned() bool { return l.Status == LoanReturned }

// Rating is a user's score and comment for a book.
type Rating struct {
	ID      ID     `json:"id_ratingBuku,omitempty"`
	BookID  ID     `json:"buku"`
	UserID  ID     `json:"pengguna"`
	Score   int    `json:"rating"`
	Comment string `json:"komentar"`
}

// RatingSummary aggregates ratings of one book. Average is nil when Count is 0.
type RatingSummary struct {
	Ratings []Rating `json:"ratings"`
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
}

// User is the public profile returned by /pengguna/{id}.
type User struct {
	ID       ID     `json:"idPengguna,omitempty"`
	Name     string `json:"nama"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Name     string `json:"nama" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,looseemail"`
	Password string `json:"kataSandi" form:"password" validate:"required"`
}

// UnmarshalJSON accepts the rating id under either "id_ratingBuku" or "id".
// Fields absent from b keep their current values.
func (r *Rating) UnmarshalJSON(b []byte) error {
	type plain Rating
	aux := struct {
		plain
		ID    *ID `json:"id_ratingBuku"`
		AltID *ID `json:"id"`
	}{plain: plain(*r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Rating(aux.plain)
	switch {
	case aux.ID != nil && !aux.ID.IsZero():
		r.ID = *aux.ID
	case aux.AltID != nil && !aux.AltID.IsZero():
		r.ID = *aux.AltID
	}
	return nil
}

// RatingInput is the review form submitted after a loan is returned.
type RatingInput struct {
	Score   int    `json:"rating" form:"score" validate:"min=1,max=5"`
	Comment string `json:"komentar" form:"comment" validate:"required,notblank,max=500"`
}
