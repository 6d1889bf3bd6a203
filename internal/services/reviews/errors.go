package reviews

import "errors"

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("you have already reviewed this movie")
	ErrInvalidReview       = errors.New("a review needs a rating or a text")
	ErrNotOwner            = errors.New("not your review")
	ErrMovieNotFound       = errors.New("movie not found")
)
