package domain

import "errors"

var (
	MessageFailedBodyRequest    = "failed to process request body"
	MessageFailedProcessRequest = "failed to process request"

	ErrParseID = errors.New("failed to parse id")
)
