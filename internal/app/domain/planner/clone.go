package planner

import "github.com/EthanH9977/JourneyXPro/internal/app/models"

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRequest(r *models.TripRequest) *models.TripRequest {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneActivity(a models.Activity) models.Activity {
	c := a
	c.ID = cloneString(a.ID)
	c.TransportDetail = cloneString(a.TransportDetail)
	c.Cost = cloneString(a.Cost)
	c.LocalTip = cloneString(a.LocalTip)
	c.Duration = cloneString(a.Duration)
	c.BookingRequired = cloneBool(a.BookingRequired)
	c.RainPlan = cloneString(a.RainPlan)
	if a.Location != nil {
		loc := *a.Location
		loc.Address = cloneString(a.Location.Address)
		c.Location = &loc
	}
	return c
}

func clonePlan(p models.TripPlan) models.TripPlan {
	c := p
	c.GeneralTips = append([]string(nil), p.GeneralTips...)
	c.Days = make([]models.DayPlan, len(p.Days))
	for i, d := range p.Days {
		day := d
		day.Activities = make([]models.Activity, len(d.Activities))
		for j, a := range d.Activities {
			day.Activities[j] = cloneActivity(a)
		}
		c.Days[i] = day
	}
	return c
}

func cloneChunks(chunks []models.GroundingChunk) []models.GroundingChunk {
	out := make([]models.GroundingChunk, len(chunks))
	for i, ch := range chunks {
		if ch.Web != nil {
			out[i].Web = &models.GroundingWeb{URI: cloneString(ch.Web.URI), Title: cloneString(ch.Web.Title)}
		}
	}
	return out
}

func cloneResponse(r *models.ItineraryResponse) *models.ItineraryResponse {
	if r == nil {
		return nil
	}
	return &models.ItineraryResponse{
		Plan:            clonePlan(r.Plan),
		GroundingChunks: cloneChunks(r.GroundingChunks),
	}
}

func cloneSavedTrips(trips []models.SavedTrip) []models.SavedTrip {
	out := make([]models.SavedTrip, len(trips))
	for i, t := range trips {
		out[i] = models.SavedTrip{
			ID:        t.ID,
			Timestamp: t.Timestamp,
			Details:   t.Details,
			Response:  *cloneResponse(&t.Response),
		}
	}
	return out
}
