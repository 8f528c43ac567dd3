package dashboard

import "context"

// Group is the column a per-day breakdown groups by.
type Group string

const (
	GroupBranch Group = "branch"
	GroupSA     Group = "allocated_sa"
	GroupCRE    Group = "assigned_cre_user"
)

// Bucket is one GROUP BY row.
type Bucket struct {
	Key   string
	Count int64
}

// WindowTotals are the trailing-window counters.
type WindowTotals struct {
	Total     int64
	NoShow    int64
	Recovered int64
}

type FunnelRow struct {
	Source    string
	Booked    int64
	Confirmed int64
	Reported  int64
}

// Reader runs the aggregate queries behind the dashboard. Dates are
// "YYYY-MM-DD". The window starts at from (inclusive) and has no upper
// bound, so future bookings count.
type Reader interface {
	CountOn(ctx context.Context, date string) (int64, error)
	CountPendingOn(ctx context.Context, date string) (int64, error)
	GroupOn(ctx context.Context, group Group, date string) ([]Bucket, error)
	Window(ctx context.Context, from string) (WindowTotals, error)
	Funnel(ctx context.Context, from string) ([]FunnelRow, error)
}
