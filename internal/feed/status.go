package feed

import "errors"

// Status is the single user-visible outcome of the latest interactive action.
type Status int

const (
	StatusNone Status = iota
	StatusInvalidLink
	StatusInvalidRSS
	StatusAlreadyExists
	StatusNetworkError
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusInvalidLink:
		return "invalidLink"
	case StatusInvalidRSS:
		return "invalidRSS"
	case StatusAlreadyExists:
		return "alreadyExists"
	case StatusNetworkError:
		return "networkError"
	case StatusValid:
		return "valid"
	}
	return "unknown"
}

// MessageKey is the translation key for the status message.
// StatusNone has no message.
func (s Status) MessageKey() string {
	switch s {
	case StatusNone:
		return ""
	case StatusInvalidLink:
		return "invalidLink"
	case StatusInvalidRSS:
		return "invalidRSS"
	case StatusAlreadyExists:
		return "RSSAlreadyExists"
	case StatusNetworkError:
		return "networkError"
	case StatusValid:
		return "valid"
	}
	return ""
}

// IsFailure reports whether the status describes a failed submission.
func (s Status) IsFailure() bool {
	switch s {
	case StatusInvalidLink, StatusInvalidRSS, StatusAlreadyExists, StatusNetworkError:
		return true
	}
	return false
}

// StatusFor classifies an error from the validate/fetch pipeline.
// A nil error is StatusValid. Unclassified errors count as network failures
// since they can only originate from the transport.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusValid
	case errors.Is(err, ErrInvalidURL):
		return StatusInvalidLink
	case errors.Is(err, ErrAlreadyTracked):
		return StatusAlreadyExists
	case errors.Is(err, ErrInvalidFeedFormat):
		return StatusInvalidRSS
	default:
		return StatusNetworkError
	}
}
