package itinerary

import (
	"fmt"
	"strconv"
	"time"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

// MarkerPalette colours map markers by day.
var MarkerPalette = []string{"#4f46e5", "#db2777", "#059669", "#d97706", "#7c3aed"}

var weekdayLabels = [...]string{"日", "一", "二", "三", "四", "五", "六"}

var displayDateLayouts = []string{"2006-1-2", "2006/1/2", time.RFC3339, "2006-01-02T15:04:05"}

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// MarkerColor picks the palette entry for a 1-based day index.
func MarkerColor(day int) string {
	if day <= 0 {
		return MarkerPalette[0]
	}
	return MarkerPalette[(day-1)%len(MarkerPalette)]
}

// ExtractMapMarkers flattens every located activity in day-then-activity order.
// Activities without a location are skipped.
func ExtractMapMarkers(plan *models.TripPlan) []models.MapMarker {
	markers := []models.MapMarker{}
	if plan == nil {
		return markers
	}
	for _, day := range plan.Days {
		for _, act := range day.Activities {
			if act.Location == nil {
				continue
			}
			markers = append(markers, models.MapMarker{
				Lat:         act.Location.Lat,
				Lng:         act.Location.Lng,
				Name:        act.Location.Name,
				Address:     act.Location.Address,
				Day:         day.Day,
				Description: act.Description,
				Color:       MarkerColor(day.Day),
			})
		}
	}
	return markers
}

// EventTypeFor maps an activity tag to the export book event tag. Unknown
// tags, including "other", become WALKING.
func EventTypeFor(t models.ActivityType) models.TravelBookEventType {
	switch t {
	case models.ActivityFood:
		return models.EventFood
	case models.ActivityTransport:
		return models.EventBus
	case models.ActivityShopping:
		return models.EventShopping
	case models.ActivityRest:
		return models.EventHotel
	case models.ActivitySightseeing:
		return models.EventSightseeing
	default:
		return models.EventWalking
	}
}

// FormatDisplayDate renders "M/D (週)". Text that is not a calendar date is
// returned unchanged.
func FormatDisplayDate(dateStr string) string {
	for _, layout := range displayDateLayouts {
		t, err := time.Parse(layout, dateStr)
		if err != nil {
			continue
		}
		return fmt.Sprintf("%d/%d (%s)", int(t.Month()), t.Day(), weekdayLabels[t.Weekday()])
	}
	return dateStr
}

// LocationURL builds the map search link for a point.
func LocationURL(loc models.GeoPoint) string {
	return mapsSearchURL + strconv.FormatFloat(loc.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Lng, 'f', -1, 64)
}

func eventDetails(act models.Activity) []models.TravelBookDetail {
	var details []models.TravelBookDetail
	add := func(title string, content *string) {
		if content != nil && *content != "" {
			details = append(details, models.TravelBookDetail{Title: title, Content: *content})
		}
	}
	add("交通", act.TransportDetail)
	add("費用", act.Cost)
	add("雨備方案", act.RainPlan)
	add("在地小秘訣", act.LocalTip)
	add("預估停留", act.Duration)
	return details
}

// ToTravelBook converts a validated plan into the export book format.
func ToTravelBook(plan *models.TripPlan) []models.TravelBookDay {
	book := []models.TravelBookDay{}
	if plan == nil {
		return book
	}
	for _, day := range plan.Days {
		events := make([]models.TravelBookEvent, 0, len(day.Activities))
		for i, act := range day.Activities {
			event := models.TravelBookEvent{
				ID:           fmt.Sprintf("%d-%d", day.Day, i),
				Time:         act.Time,
				Title:        act.Title,
				LocationName: plan.Destination,
				Type:         EventTypeFor(act.Type),
				Description:  act.Description,
				Details:      eventDetails(act),
			}
			if act.Location != nil {
				if act.Location.Name != "" {
					event.LocationName = act.Location.Name
				}
				url := LocationURL(*act.Location)
				event.LocationURL = &url
			}
			events = append(events, event)
		}

		region := day.Theme
		if region == "" {
			region = plan.Destination
		}
		book = append(book, models.TravelBookDay{
			DayID:       day.Day,
			DateStr:     day.Date,
			DisplayDate: FormatDisplayDate(day.Date),
			Region:      region,
			Events:      events,
		})
	}
	return book
}
