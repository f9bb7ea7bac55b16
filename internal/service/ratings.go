package service

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/and161185/perpus/internal/batch"
	"github.com/and161185/perpus/internal/model"
	"github.com/and161185/perpus/internal/validate"
)

// RatingService defines book rating operations.
type RatingService interface {
	// ListForBook returns the book's ratings with count and average.
	ListForBook(ctx context.Context, bookID model.ID) (model.RatingSummary, error)
	// Submit posts a score and comment for a book.
	Submit(ctx context.Context, bookID, userID model.ID, score int, comment string) (model.Rating, error)
	// ResolveReviewerNames maps each referenced user id to a display name.
	ResolveReviewerNames(ctx context.Context, ratings []model.Rating) map[model.ID]string
}

type RatingServiceImpl struct {
	api   Caller
	v     *validate.Validator
	limit int
}

// NewRatingService constructs RatingService. A nil validator gets the default one.
func NewRatingService(api Caller, v *validate.Validator) *RatingServiceImpl {
	if v == nil {
		v = validate.New()
	}
	return &RatingServiceImpl{api: api, v: v, limit: batch.DefaultLimit}
}

func (s *RatingServiceImpl) ListForBook(ctx context.Context, bookID model.ID) (model.RatingSummary, error) {
	if err := requireID("bookId", bookID); err != nil {
		return model.RatingSummary{}, err
	}
	var ratings []model.Rating
	if err := s.api.Call(ctx, http.MethodGet, resource("/rating/buku", bookID), nil, &ratings); err != nil {
		return model.RatingSummary{}, err
	}
	return Summarize(ratings), nil
}

// Summarize counts ratings and averages their scores to one decimal.
// The average is nil when there are no ratings.
func Summarize(ratings []model.Rating) model.RatingSummary {
	if ratings == nil {
		ratings = []model.Rating{}
	}
	sum := model.RatingSummary{Ratings: ratings, Count: len(ratings)}
	if sum.Count == 0 {
		return sum
	}
	total := 0
	for _, r := range ratings {
		total += r.Score
	}
	avg := math.Round(float64(total)/float64(sum.Count)*10) / 10
	sum.Average = &avg
	return sum
}

func (s *RatingServiceImpl) Submit(ctx context.Context, bookID, userID model.ID, score int, comment string) (model.Rating, error) {
	in := model.RatingInput{Score: score, Comment: strings.TrimSpace(comment)}
	verr := s.v.Collect(in)
	if bookID.IsZero() {
		verr.Add("bookId", "bookId is required")
	}
	if userID.IsZero() {
		verr.Add("userId", "userId is required")
	}
	if err := verr.OrNil(); err != nil {
		return model.Rating{}, err
	}

	r := model.Rating{BookID: bookID, UserID: userID, Score: in.Score, Comment: in.Comment}
	out := r
	if err := s.api.Call(ctx, http.MethodPost, "/rating", r, &out); err != nil {
		return model.Rating{}, err
	}
	return out, nil
}

// ResolveReviewerNames fetches one profile per distinct user. Failed
// lookups map to UnknownUser.
func (s *RatingServiceImpl) ResolveReviewerNames(ctx context.Context, ratings []model.Rating) map[model.ID]string {
	ids := make([]model.ID, 0, len(ratings))
	for _, r := range ratings {
		ids = append(ids, r.UserID)
	}
	return batch.Resolve(ctx, ids, s.limit, UnknownUser, func(ctx context.Context, id model.ID) (string, error) {
		var u model.User
		if err := s.api.Call(ctx, http.MethodGet, resource("/pengguna", id), nil, &u); err != nil {
			return "", err
		}
		if strings.TrimSpace(u.Name) == "" {
			return UnknownUser, nil
		}
		return u.Name, nil
	})
}

// Review is a rating with its reviewer's display name.
type Review struct {
	model.Rating
	Reviewer string `json:"reviewer"`
}

// Reviews pairs ratings with resolved names, keeping input order.
func Reviews(ratings []model.Rating, names map[model.ID]string) []Review {
	out := make([]Review, 0, len(ratings))
	for _, r := range ratings {
		name, ok := names[r.UserID]
		if !ok {
			name = UnknownUser
		}
		out = append(out, Review{Rating: r, Reviewer: name})
	}
	return out
}
