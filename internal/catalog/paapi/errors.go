package paapi

import "errors"

var (
	// ErrMissingCredentials indicates that the access or secret key is empty.
	ErrMissingCredentials = errors.New("paapi: access key and secret key are required")
	// ErrMissingPartnerTag indicates that no associate partner tag was configured.
	ErrMissingPartnerTag = errors.New("paapi: partner tag is required")
	// ErrInvalidItemCount indicates an item count outside 1..MaxItemCount.
	ErrInvalidItemCount = errors.New("paapi: item count out of range")
	// ErrNoResults indicates that the search matched nothing.
	ErrNoResults = errors.New("paapi: no results")
	// ErrUnauthorized indicates rejected credentials or signature.
	ErrUnauthorized = errors.New("paapi: unauthorized")
	// ErrRateLimited indicates that the request quota was exceeded.
	ErrRateLimited = errors.New("paapi: rate limited")
	// ErrBadRequest indicates that the API rejected the request parameters.
	ErrBadRequest = errors.New("paapi: bad request")
	// ErrUnexpectedStatus indicates any other non-200 response.
	ErrUnexpectedStatus = errors.New("paapi: unexpected status code")
)
