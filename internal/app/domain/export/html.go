// Package export renders a travel book for people: an HTML page, a PDF and a
// QR code of the synced book link.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

var vibeAccent = map[models.VisualVibe]string{
	models.VibeModern:     "#2563eb",
	models.VibeHistorical: "#b45309",
	models.VibeNature:     "#15803d",
	models.VibeTropical:   "#0891b2",
}

// BookView renders the travel book as a standalone HTML page. Every string
// coming from the plan is escaped.
func BookView(plan *models.TripPlan, book []models.TravelBookDay) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if plan == nil {
			_, err := io.WriteString(w, `<!DOCTYPE html><html lang="zh-Hant"><body><p>尚無行程</p></body></html>`)
			return err
		}

		accent, ok := vibeAccent[plan.VisualVibe]
		if !ok {
			accent = vibeAccent[models.VibeModern]
		}
		esc := templ.EscapeString[string]

		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="zh-Hant"><head><meta charset="utf-8">`)
		fmt.Fprintf(&b, `<title>%s</title>`, esc(plan.TripTitle))
		fmt.Fprintf(&b, `<style>body{font-family:sans-serif;margin:2rem}h1,h2{color:%s}.event{margin:.5rem 0}.time{font-weight:bold;margin-right:.5rem}</style>`, accent)
		b.WriteString(`</head><body>`)
		fmt.Fprintf(&b, `<header><h1>%s</h1><p>%s · %s · %s</p></header>`,
			esc(plan.TripTitle), esc(plan.Destination), esc(plan.Duration), esc(plan.TotalBudgetEstimate))

		for _, day := range book {
			fmt.Fprintf(&b, `<section class="day" id="day-%d"><h2>%s %s</h2>`, day.DayID, esc(day.DisplayDate), esc(day.Region))
			for _, ev := range day.Events {
				fmt.Fprintf(&b, `<div class="event" data-type="%s"><span class="time">%s</span><strong>%s</strong>`,
					esc(string(ev.Type)), esc(ev.Time), esc(ev.Title))
				if ev.LocationURL != nil {
					fmt.Fprintf(&b, ` <a href="%s" rel="noopener" target="_blank">%s</a>`, esc(*ev.LocationURL), esc(ev.LocationName))
				}
				fmt.Fprintf(&b, `<p>%s</p>`, esc(ev.Description))
				if len(ev.Details) > 0 {
					b.WriteString(`<ul>`)
					for _, d := range ev.Details {
						fmt.Fprintf(&b, `<li>%s：%s</li>`, esc(d.Title), esc(d.Content))
					}
					b.WriteString(`</ul>`)
				}
				b.WriteString(`</div>`)
			}
			b.WriteString(`</section>`)
		}

		if len(plan.GeneralTips) > 0 {
			b.WriteString(`<section class="tips"><h2>旅遊小提醒</h2><ul>`)
			for _, tip := range plan.GeneralTips {
				fmt.Fprintf(&b, `<li>%s</li>`, esc(tip))
			}
			b.WriteString(`</ul></section>`)
		}
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
