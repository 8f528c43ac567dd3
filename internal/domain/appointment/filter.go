package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
)

// View selects the date window of an appointment listing.
type View string

const (
	ViewDay      View = "day"
	ViewUpcoming View = "upcoming"
	ViewMonth    View = "month"
	ViewYear     View = "year"
	ViewCustom   View = "custom"
)

// MaxListRows caps every listing.
const MaxListRows = 1000

// ListFilter is the caller-facing listing request.
type ListFilter struct {
	View     View
	Date     string
	Month    int
	Year     int
	DateFrom string
	DateTo   string

	Branch      string
	Source      string
	ServiceType string
	CRE         string
	SA          string
	Status      string
	Outcome     string
	N1Status    string
	BookingID   string

	// Flags only narrow the listing when true.
	Priority  bool
	Docket    bool
	Recovered bool
}

// DateBounds constrains appointment_date; empty members are unbounded.
// Dates are "YYYY-MM-DD" so string comparison orders them correctly.
type DateBounds struct {
	Equal string
	After string // exclusive
	From  string // inclusive
	Until string // inclusive
	To    string // exclusive
}

// Query is a resolved listing the repository can execute directly.
type Query struct {
	Dates DateBounds

	Equals map[string]any
	Limit  int
}

// Resolve turns f into a Query relative to today.
func (f ListFilter) Resolve(today string) (Query, error) {
	q := Query{Equals: map[string]any{}, Limit: MaxListRows}

	switch f.View {
	case ViewDay, "":
		if f.Date != "" && !timezone.IsDate(f.Date) {
			return Query{}, httperr.ErrValidation("invalid_date", "date must be YYYY-MM-DD")
		}
		q.Dates.Equal = today
		if f.Date != "" {
			q.Dates.Equal = f.Date
		}
	case ViewUpcoming:
		q.Dates.After = today
	case ViewMonth:
		if f.Month != 0 && (f.Month < 1 || f.Month > 12) {
			return Query{}, httperr.ErrValidation("invalid_month", "month must be between 1 and 12")
		}
		if f.Month != 0 && f.Year != 0 {
			q.Dates.From = fmt.Sprintf("%04d-%02d-01", f.Year, f.Month)
			if f.Month == 12 {
				q.Dates.To = fmt.Sprintf("%04d-01-01", f.Year+1)
			} else {
				q.Dates.To = fmt.Sprintf("%04d-%02d-01", f.Year, f.Month+1)
			}
		}
	case ViewYear:
		if f.Year != 0 {
			q.Dates.From = fmt.Sprintf("%04d-01-01", f.Year)
			q.Dates.To = fmt.Sprintf("%04d-01-01", f.Year+1)
		}
	case ViewCustom:
		if f.DateFrom != "" && f.DateTo != "" {
			if !timezone.IsDate(f.DateFrom) || !timezone.IsDate(f.DateTo) {
				return Query{}, httperr.ErrValidation("invalid_date", "date_from and date_to must be YYYY-MM-DD")
			}
			q.Dates.From = f.DateFrom
			q.Dates.Until = f.DateTo
		}
	default:
		return Query{}, httperr.ErrValidation("invalid_view", "view must be one of day, upcoming, month, year, custom")
	}

	eq := func(column, value string) {
		if value != "" {
			q.Equals[column] = value
		}
	}
	eq("branch", f.Branch)
	eq("source", f.Source)
	eq("service_type", f.ServiceType)
	eq("assigned_cre_user", f.CRE)
	eq("allocated_sa", f.SA)
	eq("appointment_status", f.Status)
	eq("appointment_day_outcome", f.Outcome)
	eq("n_minus_1_confirmation_status", f.N1Status)
	eq("booking_id", f.BookingID)

	if f.Priority {
		q.Equals["priority_customer"] = true
	}
	if f.Docket {
		q.Equals["docket_readiness"] = true
	}
	if f.Recovered {
		q.Equals["recovered_lost_customer"] = true
	}

	return q, nil
}
