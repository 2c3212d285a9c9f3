package generation

import (
	"fmt"
	"strings"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

// The wording, language mandate and tag sets below are a contract with the
// model; swapping providers must keep them intact.
const itineraryPrompt = `
    Role: You are 'JourneyX Pro', an expert local travel planner.
    Language: **MUST BE Traditional Chinese (繁體中文 - Taiwan usage)**.

    Task: Plan a trip to %s for %s to %s.
    Members: %s.
    Must Visit: %s.
    Accommodation: %s.
    Preferences: %s.

    Requirements:
    1. **Hyper-Localization**: Recommend local gems, verify restaurants.
    2. **Logistics**: Calculate best transport. Mention specific subway exits.
    3. **Pacing**: Include rest breaks.
    4. **Coordinates**: MUST provide accurate Lat/Lng for every location.
    5. **Rain Plan**: Provide indoor alternatives.
    6. **Budget**: Estimate costs in local currency or TWD.
    7. **Visual Vibe**: Analyze the destination and choose one style: 'modern' (City/Tech), 'historical' (Culture/Old), 'nature' (Mountains/Forest), or 'tropical' (Beach/Island).

    Output Format:
    You MUST return a strictly valid JSON object.
    Do not wrap it in markdown code blocks.
    Just return the raw JSON string.

    The JSON must match this structure exactly:
    {
      "tripTitle": "Creative Trip Title in Traditional Chinese",
      "destination": "Destination Name",
      "duration": "e.g., 5天4夜",
      "totalBudgetEstimate": "Total Budget Estimate",
      "visualVibe": "modern" | "historical" | "nature" | "tropical",
      "generalTips": ["Tip 1", "Tip 2", "Tip 3"],
      "days": [
        {
          "day": 1,
          "date": "YYYY-MM-DD",
          "theme": "Day Theme",
          "summary": "Day Summary",
          "activities": [
            {
              "time": "HH:MM",
              "title": "Activity Name",
              "description": "Details",
              "type": "sightseeing" | "food" | "transport" | "shopping" | "rest" | "other",
              "transportDetail": "Transport info",
              "cost": "Cost estimate",
              "localTip": "Expert tip",
              "duration": "Duration",
              "bookingRequired": boolean,
              "rainPlan": "Rain backup",
              "location": {
                "lat": number,
                "lng": number,
                "name": "Location Name",
                "address": "Address"
              }
            }
          ]
        }
      ]
    }
    `

const adjustmentSegment = `
    Adjustment Request:
    The traveler reviewed the previous itinerary for this trip and asked for these changes:
    %s
    Rebuild the full itinerary with the changes applied. Keep the same language and the exact JSON structure above.
    `

// BuildPrompt renders the generation prompt for a request. Non-blank
// feedback turns it into an adjustment prompt.
func BuildPrompt(req models.TripRequest, feedback string) string {
	prompt := fmt.Sprintf(itineraryPrompt,
		req.Destination,
		req.StartDate,
		req.EndDate,
		req.Members,
		req.MustVisit,
		req.Accommodation,
		req.Preferences,
	)
	if fb := strings.TrimSpace(feedback); fb != "" {
		prompt += fmt.Sprintf(adjustmentSegment, fb)
	}
	return prompt
}
