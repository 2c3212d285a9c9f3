package itinerary

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

// ValidationMessagePrefix starts every schema failure message shown to users.
const ValidationMessagePrefix = "行程資料格式驗證失敗："

// FieldIssue is a single schema violation.
type FieldIssue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (i FieldIssue) String() string {
	return i.Path + " " + i.Reason
}

// SchemaValidationError aggregates every violation found in one pass.
type SchemaValidationError struct {
	Issues []FieldIssue
}

func (e *SchemaValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return ValidationMessagePrefix + strings.Join(parts, "; ")
}

func (e *SchemaValidationError) Unwrap() error {
	return models.ErrSchemaValidation
}

// ValidateTripPlan checks a generic JSON value (as produced by
// encoding/json into an `any`) against the itinerary schema and builds the
// typed plan. Either every constraint holds or a *SchemaValidationError
// listing all violations is returned.
func ValidateTripPlan(candidate any) (*models.TripPlan, error) {
	v := &validator{}
	plan := v.tripPlan(candidate)
	if len(v.issues) > 0 {
		return nil, &SchemaValidationError{Issues: v.issues}
	}
	return plan, nil
}

type validator struct {
	issues []FieldIssue
}

func (v *validator) fail(path, reason string) {
	if path == "" {
		path = "(root)"
	}
	v.issues = append(v.issues, FieldIssue{Path: path, Reason: reason})
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return join(path, strconv.Itoa(i))
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func (v *validator) object(value any, path string) (map[string]any, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		v.fail(path, "expected object, received "+typeName(value))
		return nil, false
	}
	return obj, true
}

// requiredString accepts only strings that are non-empty after trimming.
func (v *validator) requiredString(obj map[string]any, key, path string) string {
	p := join(path, key)
	raw, present := obj[key]
	if !present {
		v.fail(p, "is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(p, "expected string, received "+typeName(raw))
		return ""
	}
	if strings.TrimSpace(s) == "" {
		v.fail(p, "must not be empty")
		return ""
	}
	return s
}

// optionalString treats a missing key or JSON null as absent.
func (v *validator) optionalString(obj map[string]any, key, path string) *string {
	raw, present := obj[key]
	if !present || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(join(path, key), "expected string, received "+typeName(raw))
		return nil
	}
	return &s
}

func (v *validator) optionalBool(obj map[string]any, key, path string) *bool {
	raw, present := obj[key]
	if !present || raw == nil {
		return nil
	}
	b, ok := raw.(bool)
	if !ok {
		v.fail(join(path, key), "expected boolean, received "+typeName(raw))
		return nil
	}
	return &b
}

func (v *validator) requiredNumber(obj map[string]any, key, path string) float64 {
	p := join(path, key)
	raw, present := obj[key]
	if !present {
		v.fail(p, "is required")
		return 0
	}
	n, ok := raw.(float64)
	if !ok {
		v.fail(p, "expected number, received "+typeName(raw))
		return 0
	}
	return n
}

// requiredArray returns the elements of an array holding at least one item.
func (v *validator) requiredArray(obj map[string]any, key, path string) []any {
	p := join(path, key)
	raw, present := obj[key]
	if !present {
		v.fail(p, "is required")
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		v.fail(p, "expected array, received "+typeName(raw))
		return nil
	}
	if len(arr) == 0 {
		v.fail(p, "must contain at least 1 element")
		return nil
	}
	return arr
}

func (v *validator) enum(obj map[string]any, key, path string, allowed []string) string {
	p := join(path, key)
	raw, present := obj[key]
	if !present {
		v.fail(p, "is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(p, "expected string, received "+typeName(raw))
		return ""
	}
	for _, tag := range allowed {
		if s == tag {
			return s
		}
	}
	v.fail(p, fmt.Sprintf("must be one of %s, received %q", strings.Join(allowed, "|"), s))
	return ""
}

func activityTags() []string {
	tags := make([]string, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		tags[i] = string(t)
	}
	return tags
}

func vibeTags() []string {
	tags := make([]string, len(models.VisualVibes))
	for i, t := range models.VisualVibes {
		tags[i] = string(t)
	}
	return tags
}

func (v *validator) tripPlan(value any) *models.TripPlan {
	obj, ok := v.object(value, "")
	if !ok {
		return nil
	}
	plan := &models.TripPlan{
		TripTitle:           v.requiredString(obj, "tripTitle", ""),
		Destination:         v.requiredString(obj, "destination", ""),
		Duration:            v.requiredString(obj, "duration", ""),
		TotalBudgetEstimate: v.requiredString(obj, "totalBudgetEstimate", ""),
		VisualVibe:          models.VisualVibe(v.enum(obj, "visualVibe", "", vibeTags())),
	}

	days := v.requiredArray(obj, "days", "")
	plan.Days = make([]models.DayPlan, 0, len(days))
	for i, raw := range days {
		if day, ok := v.dayPlan(raw, index("days", i)); ok {
			plan.Days = append(plan.Days, day)
		}
	}

	tips := v.requiredArray(obj, "generalTips", "")
	plan.GeneralTips = make([]string, 0, len(tips))
	for i, raw := range tips {
		p := index("generalTips", i)
		s, ok := raw.(string)
		switch {
		case !ok:
			v.fail(p, "expected string, received "+typeName(raw))
		case strings.TrimSpace(s) == "":
			v.fail(p, "must not be empty")
		default:
			plan.GeneralTips = append(plan.GeneralTips, s)
		}
	}
	return plan
}

func (v *validator) dayPlan(value any, path string) (models.DayPlan, bool) {
	obj, ok := v.object(value, path)
	if !ok {
		return models.DayPlan{}, false
	}
	day := models.DayPlan{
		Date:    v.requiredString(obj, "date", path),
		Theme:   v.requiredString(obj, "theme", path),
		Summary: v.requiredString(obj, "summary", path),
	}

	if _, present := obj["day"]; !present {
		v.fail(join(path, "day"), "is required")
	} else if n, isNum := obj["day"].(float64); !isNum {
		v.fail(join(path, "day"), "expected number, received "+typeName(obj["day"]))
	} else if n != math.Trunc(n) {
		v.fail(join(path, "day"), "expected integer")
	} else if n > math.MaxInt32 {
		v.fail(join(path, "day"), "too large")
	} else if n <= 0 {
		v.fail(join(path, "day"), "must be positive")
	} else {
		day.Day = int(n)
	}

	activities := v.requiredArray(obj, "activities", path)
	day.Activities = make([]models.Activity, 0, len(activities))
	for i, raw := range activities {
		if act, ok := v.activity(raw, index(join(path, "activities"), i)); ok {
			day.Activities = append(day.Activities, act)
		}
	}
	return day, true
}

func (v *validator) activity(value any, path string) (models.Activity, bool) {
	obj, ok := v.object(value, path)
	if !ok {
		return models.Activity{}, false
	}
	return models.Activity{
		ID:              v.optionalString(obj, "id", path),
		Time:            v.requiredString(obj, "time", path),
		Title:           v.requiredString(obj, "title", path),
		Description:     v.requiredString(obj, "description", path),
		Type:            models.ActivityType(v.enum(obj, "type", path, activityTags())),
		TransportDetail: v.optionalString(obj, "transportDetail", path),
		Cost:            v.optionalString(obj, "cost", path),
		LocalTip:        v.optionalString(obj, "localTip", path),
		Duration:        v.optionalString(obj, "duration", path),
		BookingRequired: v.optionalBool(obj, "bookingRequired", path),
		RainPlan:        v.optionalString(obj, "rainPlan", path),
		Location:        v.location(obj, path),
	}, true
}

func (v *validator) location(obj map[string]any, path string) *models.GeoPoint {
	raw, present := obj["location"]
	if !present || raw == nil {
		return nil
	}
	p := join(path, "location")
	loc, ok := v.object(raw, p)
	if !ok {
		return nil
	}
	return &models.GeoPoint{
		Lat:     v.requiredNumber(loc, "lat", p),
		Lng:     v.requiredNumber(loc, "lng", p),
		Name:    v.requiredString(loc, "name", p),
		Address: v.optionalString(loc, "address", p),
	}
}
