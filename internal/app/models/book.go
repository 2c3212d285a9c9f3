package models

// TravelBookEventType is the external event tag of the export book format.
type TravelBookEventType string

const (
	EventFood        TravelBookEventType = "FOOD"
	EventBus         TravelBookEventType = "BUS"
	EventShopping    TravelBookEventType = "SHOPPING"
	EventHotel       TravelBookEventType = "HOTEL"
	EventSightseeing TravelBookEventType = "SIGHTSEEING"
	EventWalking     TravelBookEventType = "WALKING"
)

type TravelBookDetail struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type TravelBookEvent struct {
	ID           string              `json:"id"`
	Time         string              `json:"time"`
	Title        string              `json:"title"`
	LocationName string              `json:"locationName"`
	LocationURL  *string             `json:"locationUrl,omitempty"`
	Type         TravelBookEventType `json:"type"`
	Description  string              `json:"description"`
	Details      []TravelBookDetail  `json:"details,omitempty"`
}

// TravelBookDay is one day of the export book consumed by the sync target.
type TravelBookDay struct {
	DayID       int               `json:"dayId"`
	DateStr     string            `json:"dateStr"`
	DisplayDate string            `json:"displayDate"`
	Region      string            `json:"region"`
	Events      []TravelBookEvent `json:"events"`
}
