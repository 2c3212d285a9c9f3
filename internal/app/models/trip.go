package models

// ActivityType is the closed category tag of an Activity.
type ActivityType string

const (
	ActivitySightseeing ActivityType = "sightseeing"
	ActivityFood        ActivityType = "food"
	ActivityTransport   ActivityType = "transport"
	ActivityShopping    ActivityType = "shopping"
	ActivityRest        ActivityType = "rest"
	ActivityOther       ActivityType = "other"
)

// ActivityTypes lists every accepted activity tag in prompt order.
var ActivityTypes = []ActivityType{
	ActivitySightseeing, ActivityFood, ActivityTransport, ActivityShopping, ActivityRest, ActivityOther,
}

// VisualVibe is the presentational category of a whole trip.
type VisualVibe string

const (
	VibeModern     VisualVibe = "modern"
	VibeHistorical VisualVibe = "historical"
	VibeNature     VisualVibe = "nature"
	VibeTropical   VisualVibe = "tropical"
)

// VisualVibes lists every accepted vibe tag.
var VisualVibes = []VisualVibe{VibeModern, VibeHistorical, VibeNature, VibeTropical}

// TripRequest holds the user supplied planning parameters.
type TripRequest struct {
	Destination   string `json:"destination" binding:"required"`
	StartDate     string `json:"startDate" binding:"required"`
	EndDate       string `json:"endDate" binding:"required"`
	Members       string `json:"members"`
	MustVisit     string `json:"mustVisit"`
	Accommodation string `json:"accommodation"`
	Preferences   string `json:"preferences"`
}

// GeoPoint is the location attached to an activity.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

// Activity is one scheduled unit within a day. Nil optional fields mean
// "not applicable".
type Activity struct {
	ID              *string      `json:"id,omitempty"`
	Time            string       `json:"time"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Type            ActivityType `json:"type"`
	TransportDetail *string      `json:"transportDetail,omitempty"`
	Cost            *string      `json:"cost,omitempty"`
	LocalTip        *string      `json:"localTip,omitempty"`
	Duration        *string      `json:"duration,omitempty"`
	BookingRequired *bool        `json:"bookingRequired,omitempty"`
	RainPlan        *string      `json:"rainPlan,omitempty"`
	Location        *GeoPoint    `json:"location,omitempty"`
}

type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Theme      string     `json:"theme"`
	Summary    string     `json:"summary"`
	Activities []Activity `json:"activities"`
}

// TripPlan is the root validated itinerary artifact.
type TripPlan struct {
	TripTitle           string     `json:"tripTitle"`
	Destination         string     `json:"destination"`
	Duration            string     `json:"duration"`
	TotalBudgetEstimate string     `json:"totalBudgetEstimate"`
	VisualVibe          VisualVibe `json:"visualVibe"`
	Days                []DayPlan  `json:"days"`
	GeneralTips         []string   `json:"generalTips"`
}

type GroundingWeb struct {
	URI   *string `json:"uri,omitempty"`
	Title *string `json:"title,omitempty"`
}

// GroundingChunk is a citation returned next to a generated plan.
type GroundingChunk struct {
	Web *GroundingWeb `json:"web,omitempty"`
}

type ItineraryResponse struct {
	Plan            TripPlan         `json:"plan"`
	GroundingChunks []GroundingChunk `json:"groundingChunks"`
}

// SavedTrip is an immutable history record.
type SavedTrip struct {
	ID        string            `json:"id"`
	Timestamp int64             `json:"timestamp"`
	Details   TripRequest       `json:"details"`
	Response  ItineraryResponse `json:"response"`
}

// MapMarker is one located activity flattened for the map view.
type MapMarker struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	Day         int     `json:"day"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
}
