package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

var errEmptyResponse = errors.New("empty response text")

// MalformedResponseError means the model text could not be read as JSON at all.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("AI 回應不是有效的 JSON：%v", e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{models.ErrMalformedResponse, e.Err}
}

// ParseTripPlan turns raw model text into a validated plan. JSON syntax
// problems come back as *MalformedResponseError, shape problems as
// *SchemaValidationError.
func ParseTripPlan(responseText string) (*models.TripPlan, error) {
	cleaned := CleanJSONResponse(responseText)
	if cleaned == "" {
		return nil, &MalformedResponseError{Err: errEmptyResponse}
	}

	var candidate any
	if err := json.Unmarshal([]byte(cleaned), &candidate); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	return ValidateTripPlan(candidate)
}

// CleanJSONResponse removes the markdown fences and stray backticks models
// wrap around JSON, then cuts out the outermost object if prose surrounds it.
func CleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "`")
	response = strings.TrimSuffix(response, "`")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	end := matchingBrace(response, firstBrace)
	if end == -1 {
		// unbalanced: leave it to the decoder to report
		return response
	}
	return strings.TrimSpace(response[firstBrace : end+1])
}

// matchingBrace finds the brace closing the object opened at start, ignoring
// braces inside JSON strings.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
