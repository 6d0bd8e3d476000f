package services

import (
	"errors"

	"nomify/models"
)

// Failure taxonomy for the resolution and analysis chain. Everything a
// resolver or the analysis client can fail with collapses to one of
// these, and the pipeline converts them to user-presentable reasons.
var (
	// ErrEmptyInput: text input was blank after trimming. Recovered at
	// the controller; never becomes a pipeline state.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoFoodRecognized: a resolver could not produce a canonical
	// food identity from the image or barcode.
	ErrNoFoodRecognized = errors.New("no food recognized")

	// ErrServiceUnavailable: transport failure or non-2xx calling the
	// analysis service.
	ErrServiceUnavailable = errors.New("analysis service unavailable")

	// ErrUnidentifiableFood: the analysis service explicitly reported
	// it could not classify the food item.
	ErrUnidentifiableFood = errors.New("could not identify food item")

	// ErrMalformedResponse: the analysis service answered but the
	// payload was neither a verdict nor an error signal. Shown to the
	// user as service trouble, logged distinctly.
	ErrMalformedResponse = errors.New("malformed analysis response")

	// ErrAnalysisInFlight: a second submission arrived while one
	// resolver+analysis chain was still outstanding.
	ErrAnalysisInFlight = errors.New("analysis already in flight")
)

// FailureReasonFor maps a chain error to the reason shown to the user.
// MalformedResponse deliberately reads the same as ServiceUnavailable;
// the distinction only matters for diagnostics.
func FailureReasonFor(err error) models.FailureReason {
	switch {
	case errors.Is(err, ErrNoFoodRecognized):
		return models.FailureReason{
			Code:    "no_food_recognized",
			Message: "We couldn't identify your food. Please try again.",
		}
	case errors.Is(err, ErrUnidentifiableFood):
		return models.FailureReason{
			Code:    "unidentifiable_food",
			Message: "We couldn't identify that food item. Try a more specific name.",
		}
	case errors.Is(err, ErrMalformedResponse):
		return models.FailureReason{
			Code:    "malformed_response",
			Message: "We're having trouble analyzing your food right now. Please try again later.",
		}
	default:
		return models.FailureReason{
			Code:    "service_unavailable",
			Message: "We're having trouble analyzing your food right now. Please try again later.",
		}
	}
}
