package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/model"
)

func scores(s ...int) []model.Rating {
	out := make([]model.Rating, 0, len(s))
	for _, v := range s {
		out = append(out, model.Rating{Score: v})
	}
	return out
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		name  string
		in    []model.Rating
		count int
		avg   *float64
	}{
		{"none", nil, 0, nil},
		{"five four three", scores(5, 4, 3), 3, ptr(4.0)},
		{"half", scores(5, 4), 2, ptr(4.5)},
		{"rounds up", scores(5, 5, 4), 3, ptr(4.7)},
		{"rounds down", scores(4, 4, 5), 3, ptr(4.3)},
		{"single", scores(1), 1, ptr(1.0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.in)
			require.Equal(t, tc.count, got.Count)
			require.NotNil(t, got.Ratings)
			if tc.avg == nil {
				require.Nil(t, got.Average)
				return
			}
			require.NotNil(t, got.Average)
			require.InDelta(t, *tc.avg, *got.Average, 1e-9)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestRating_ListForBook(t *testing.T) {
	api := &fakeCaller{handle: func(method, path string, _ any) (string, error) {
		require.Equal(t, "/rating/buku/3", path)
		return `[{"id_ratingBuku":1,"buku":3,"pengguna":7,"rating":5,"komentar":"bagus"},
		         {"id":2,"buku":3,"pengguna":8,"rating":4,"komentar":"ok"},
		         {"id":3,"buku":3,"pengguna":7,"rating":3,"komentar":"meh"}]`, nil
	}}
	s := NewRatingService(api, nil)

	sum, err := s.ListForBook(context.Background(), "3")
	require.NoError(t, err)
	require.Equal(t, 3, sum.Count)
	require.NotNil(t, sum.Average)
	require.InDelta(t, 4.0, *sum.Average, 1e-9)
	require.Equal(t, model.ID("1"), sum.Ratings[0].ID)
	require.Equal(t, model.ID("2"), sum.Ratings[1].ID)
	require.Equal(t, "bagus", sum.Ratings[0].Comment)
}

func TestRating_ListForBook_Empty(t *testing.T) {
	api := &fakeCaller{handle: func(string, string, any) (string, error) { return `[]`, nil }}
	sum, err := NewRatingService(api, nil).ListForBook(context.Background(), "3")
	require.NoError(t, err)
	require.Zero(t, sum.Count)
	require.Nil(t, sum.Average)
}

func TestRating_Submit_Validation(t *testing.T) {
	cases := []struct {
		name    string
		score   int
		comment string
		field   string
	}{
		{"score zero", 0, "nice", "score"},
		{"score six", 6, "nice", "score"},
		{"empty comment", 5, "", "comment"},
		{"blank comment", 5, "   ", "comment"},
		{"comment 501", 5, strings.Repeat("a", 501), "comment"},
		{"comment 501 runes", 5, strings.Repeat("é", 501), "comment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeCaller{}
			_, err := NewRatingService(api, nil).Submit(context.Background(), "3", "7", tc.score, tc.comment)
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Fields, 1, "fields: %v", ve.Fields)
			require.True(t, ve.Has(tc.field), "fields: %v", ve.Fields)
			require.Zero(t, api.count())
		})
	}
}

func TestRating_Submit(t *testing.T) {
	api := &fakeCaller{handle: func(string, string, any) (string, error) { return `{"id":12}`, nil }}
	s := NewRatingService(api, nil)

	comment := strings.Repeat("é", 500)
	r, err := s.Submit(context.Background(), "3", "7", 4, comment)
	require.NoError(t, err)
	require.Equal(t, model.ID("12"), r.ID)
	require.Equal(t, 4, r.Score)

	posts := api.callsTo(http.MethodPost)
	require.Len(t, posts, 1)
	require.Equal(t, "/rating", posts[0].path)
	body, err := jsonMarshal(posts[0].body)
	require.NoError(t, err)
	require.JSONEq(t, `{"buku":3,"pengguna":7,"rating":4,"komentar":"`+comment+`"}`, body)
}

func TestRating_ResolveReviewerNames(t *testing.T) {
	api := &fakeCaller{handle: func(method, path string, _ any) (string, error) {
		switch path {
		case "/pengguna/7":
			return `{"nama":"Budi"}`, nil
		case "/pengguna/8":
			return "", errors.New("timeout")
		case "/pengguna/9":
			return `{"nama":""}`, nil
		}
		return "", &errs.RequestError{Method: method, Path: path, StatusCode: http.StatusNotFound}
	}}
	s := NewRatingService(api, nil)

	ratings := []model.Rating{{UserID: "8"}, {UserID: "7"}, {UserID: "7"}, {UserID: "9"}, {}}
	names := s.ResolveReviewerNames(context.Background(), ratings)
	require.Equal(t, map[model.ID]string{"7": "Budi", "8": UnknownUser, "9": UnknownUser, "": UnknownUser}, names)
	require.Equal(t, 3, api.count())

	reviews := Reviews(ratings, names)
	require.Len(t, reviews, 5)
	require.Equal(t, UnknownUser, reviews[4].Reviewer)
	require.Equal(t, UnknownUser, reviews[0].Reviewer)
	require.Equal(t, "Budi", reviews[1].Reviewer)
	require.Equal(t, model.ID("8"), reviews[0].UserID)
}
