package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/perpus/internal/pkg/json"
)

func TestID_JSON(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"u-7","c":null}`), &v))
	require.Equal(t, ID("12"), v.A)
	require.Equal(t, ID("u-7"), v.B)
	require.True(t, v.C.IsZero())

	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":12,"b":"u-7","c":null}`, string(b))

	require.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestID_MarshalOnlyCanonicalIntsAsNumbers(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"0", `0`},
		{"7", `7`},
		{"12345678901234567890", `12345678901234567890`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{"-3", `"-3"`},
		{"1e3", `"1e3"`},
		{"u-7", `"u-7"`},
		{"a\"b", `"a\"b"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			b, err := json.Marshal(Loan{BookID: tt.id})
			require.NoError(t, err)

			var raw map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(b, &raw))
			require.Equal(t, tt.want, string(raw["buku"]))

			var back Loan
			require.NoError(t, json.Unmarshal(b, &back))
			require.Equal(t, tt.id, back.BookID)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var l Loan
	require.NoError(t, json.Unmarshal([]byte(`{"tanggalPinjam":"2026-03-10","tanggalKembali":"2026-03-12T00:00:00.000+00:00","status":"Dipinjam"}`), &l))
	require.Equal(t, "2026-03-10", l.BorrowDate.String())
	require.Equal(t, "2026-03-12", l.ReturnDate.String())
	require.True(t, l.BorrowDate.Before(l.ReturnDate))
	require.False(t, l.Returned())

	b, err := json.Marshal(l)
	require.NoError(t, err)
	require.JSONEq(t, `{"buku":null,"pengguna":null,"tanggalPinjam":"2026-03-10","tanggalKembali":"2026-03-12","status":"Dipinjam"}`, string(b))

	require.Error(t, json.Unmarshal([]byte(`{"tanggalPinjam":"10/03/2026"}`), &l))
}

func TestNewDate_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	d := NewDate(time.Date(2026, 3, 10, 23, 59, 0, 0, loc))
	require.Equal(t, "2026-03-10", d.String())
	p, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	require.False(t, d.Before(p) || d.After(p))
}

func TestRating_AcceptsBothIDKeys(t *testing.T) {
	var rs []Rating
	require.NoError(t, json.Unmarshal([]byte(`[{"id_ratingBuku":1,"rating":5},{"id":2,"rating":3,"komentar":"ok"}]`), &rs))
	require.Equal(t, ID("1"), rs[0].ID)
	require.Equal(t, ID("2"), rs[1].ID)
	require.Equal(t, "ok", rs[1].Comment)
	require.Equal(t, 3, rs[1].Score)

	var both Rating
	require.NoError(t, json.Unmarshal([]byte(`{"id_ratingBuku":4,"id":5}`), &both))
	require.Equal(t, ID("4"), both.ID)
}

func TestRating_UnmarshalKeepsAbsentFields(t *testing.T) {
	r := Rating{BookID: "3", UserID: "7", Score: 4, Comment: "bagus"}
	require.NoError(t, json.Unmarshal([]byte(`{"id":12}`), &r))
	require.Equal(t, Rating{ID: "12", BookID: "3", UserID: "7", Score: 4, Comment: "bagus"}, r)

	require.NoError(t, json.Unmarshal([]byte(`{"rating":5,"id":null}`), &r))
	require.Equal(t, ID("12"), r.ID)
	require.Equal(t, 5, r.Score)
}

func TestSession_Valid(t *testing.T) {
	require.False(t, Session{Username: "x"}.Valid())
	require.True(t, Session{Token: "t"}.Valid())
}
