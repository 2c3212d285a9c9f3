package models

import "errors"

// Domain specific errors for the itinerary pipeline and planning sessions.
var (
	ErrNotFound          = errors.New("requested item not found")
	ErrMalformedResponse = errors.New("model response is not valid JSON")
	ErrSchemaValidation  = errors.New("itinerary failed schema validation")
	ErrPrecondition      = errors.New("operation precondition not met")
	ErrGenerationFailed  = errors.New("itinerary generation failed")
	ErrSyncFailed        = errors.New("travel book sync failed")
)
