package feed

import "errors"

// Error taxonomy. Every failure in the pipeline is recovered locally and ends
// up as a Status; callers classify with errors.Is.
var (
	ErrInvalidURL        = errors.New("invalid url")
	ErrAlreadyTracked    = errors.New("feed already tracked")
	ErrInvalidFeedFormat = errors.New("resource does not contain a valid feed")
	ErrFetchFailed       = errors.New("feed fetch failed")
)
