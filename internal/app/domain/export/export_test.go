package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
)

func TestBookView_EscapesPlanText(t *testing.T) {
	sample := itinerary.SamplePlan()
	plan := &sample
	plan.TripTitle = `<script>alert("x")</script>京都`
	book := itinerary.ToTravelBook(plan)

	var buf bytes.Buffer
	require.NoError(t, BookView(plan, book).Render(context.Background(), &buf))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `id="day-1"`)
	assert.Equal(t, len(book), strings.Count(out, `class="day"`))
	assert.Contains(t, out, "https://www.google.com/maps/search/?api=1")
}

func TestBookView_NoPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BookView(nil, nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "尚無行程")
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("https://journeyxbook.vercel.app?user=amy&file=kyoto")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = QRCodePNG("  ")
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	sample := itinerary.SamplePlan()
	plan := &sample
	out, err := RenderPDF(plan, itinerary.ToTravelBook(plan), PDFOptions{Link: "https://journeyxbook.vercel.app?user=amy&file=kyoto"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderPDF_Errors(t *testing.T) {
	_, err := RenderPDF(nil, nil, PDFOptions{})
	assert.Error(t, err)

	sample := itinerary.SamplePlan()
	plan := &sample
	_, err = RenderPDF(plan, itinerary.ToTravelBook(plan), PDFOptions{FontPath: "/nonexistent/font.ttf"})
	assert.Error(t, err)
}
