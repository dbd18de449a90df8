package card

import (
	"sort"
	"time"

	"github.com/frahmantamala/cardtracker/internal/core/duedate"
)

// View is a card with its due-date status derived for a given day.
type View struct {
	*Card
	DaysUntilDue int    `json:"daysUntilDue"`
	DueLabel     string `json:"dueLabel"`
	NextDueDate  string `json:"nextDueDate"`
}

func NewView(c *Card, today time.Time) View {
	days := duedate.DaysUntil(c.DueDate, today)
	return View{
		Card:         c,
		DaysUntilDue: days,
		DueLabel:     duedate.Label(days, c.IsPaid()),
		NextDueDate:  duedate.NextDueDate(c.DueDate, today).Format("2006-01-02"),
	}
}

// SortByDueDate puts completed cards last and the rest by days until due.
// Ties break on name, then id, so the order is total for a fixed today.
func SortByDueDate(cards []*Card, today time.Time) []View {
	views := make([]View, len(cards))
	for i, c := range cards {
		views[i] = NewView(c, today)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.IsPaid() != b.IsPaid() {
			return !a.IsPaid()
		}
		if a.DaysUntilDue != b.DaysUntilDue {
			return a.DaysUntilDue < b.DaysUntilDue
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return views
}
