package dialog

import (
	"fmt"
	"time"

	"github.com/bookmycut/booking-server-go/internal/booking"
	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/whatsapp"
)

// welcomeButtons are the three top-level options presented on a greeting.
func welcomeButtons() []whatsapp.Button {
	return []whatsapp.Button{
		{ID: actionChooseService, Title: "💇 Choose a Service"},
		{ID: actionMyReservations, Title: "📅 My Reservations"},
		{ID: actionLoyaltyPoints, Title: "🎁 Loyalty Points"},
	}
}

// serviceSections groups the active catalog by category, one list section per
// category in catalog order, capped and truncated to the channel limits.
func serviceSections(services []model.Service) []whatsapp.Section {
	sections := []whatsapp.Section{}
	index := map[string]int{}

	for _, svc := range services {
		i, seen := index[svc.Category]
		if !seen {
			if len(sections) == whatsapp.MaxSections {
				continue
			}
			index[svc.Category] = len(sections)
			i = len(sections)
			sections = append(sections, whatsapp.Section{Title: svc.Category})
		}
		sections[i].Rows = append(sections[i].Rows, whatsapp.Row{
			ID:          svc.ServiceID,
			Title:       whatsapp.Truncate(svc.Title, whatsapp.MaxRowTitleLen),
			Description: whatsapp.Truncate(svc.Description, whatsapp.MaxRowDescriptionLen),
		})
	}

	return sections
}

// dateSections lists the next 7 calendar days. Today and tomorrow get
// friendly labels; the rest show the weekday name.
func dateSections(now time.Time) []whatsapp.Section {
	rows := make([]whatsapp.Row, 0, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i)
		short := day.Format("Jan 2")

		var title string
		switch i {
		case 0:
			title = fmt.Sprintf("Today (%s)", short)
		case 1:
			title = fmt.Sprintf("Tomorrow (%s)", short)
		default:
			title = fmt.Sprintf("%s (%s)", day.Weekday(), short)
		}

		rows = append(rows, whatsapp.Row{
			ID:          "date_" + day.Format("2006-01-02"),
			Title:       title,
			Description: "Select for available time slots",
		})
	}

	return []whatsapp.Section{{Title: "Available Dates", Rows: rows}}
}

// rangeSections lists the time ranges still open for the selected date.
func rangeSections(date, now time.Time) []whatsapp.Section {
	open := booking.OpenRanges(date, now)
	rows := make([]whatsapp.Row, 0, len(open))
	for _, r := range open {
		rows = append(rows, whatsapp.Row{
			ID:          r.SelectionID(),
			Title:       r.Label,
			Description: "Select to see available slots",
		})
	}

	return []whatsapp.Section{{Title: "Available Time Slots", Rows: rows}}
}

// slotSections lists the open slots under the label of their range.
func slotSections(rangeLabel string, slots []booking.Slot) []whatsapp.Section {
	rows := make([]whatsapp.Row, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, whatsapp.Row{
			ID:          s.ID,
			Title:       s.Label,
			Description: "30 minute slot",
		})
	}

	return []whatsapp.Section{{Title: rangeLabel, Rows: rows}}
}

// formatAppointmentDate renders the confirmation date, e.g. "Monday, Jun 10".
func formatAppointmentDate(date time.Time) string {
	return date.Format("Monday, Jan 2")
}
