package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNoRows        = errors.New("no input rows")
	ErrInvalidLink   = errors.New("invalid share link")
	ErrHTMLResponse  = errors.New("response is an HTML page, not a document")
	ErrInvalidConfig = errors.New("invalid configuration")
)
