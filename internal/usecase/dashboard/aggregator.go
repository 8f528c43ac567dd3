package dashboard

import (
	"context"
	"math"
	"time"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/dashboard"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
)

// WindowDays is how far back the rate and funnel window reaches. Rows
// dated after today stay in the window.
const WindowDays = 30

type Funnel struct {
	Booked    int64 `json:"booked"`
	Confirmed int64 `json:"confirmed"`
	Reported  int64 `json:"reported"`
}

type Stats struct {
	TodayTotal      int64             `json:"today_total"`
	ByBranch        map[string]int64  `json:"by_branch"`
	BySA            map[string]int64  `json:"by_sa"`
	ByCRE           map[string]int64  `json:"by_cre"`
	PendingTomorrow int64             `json:"pending_tomorrow"`
	NoShowCount     int64             `json:"no_show_count"`
	NoShowRate      float64           `json:"no_show_rate"`
	SourceFunnel    map[string]Funnel `json:"source_funnel"`
	RecoveredCount  int64             `json:"recovered_count"`
}

type Aggregator struct {
	reader domain.Reader
	users  user.Repository
	loc    *time.Location
	clock  func() time.Time
}

func NewAggregator(reader domain.Reader, users user.Repository, loc *time.Location, clock func() time.Time) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{reader: reader, users: users, loc: loc, clock: clock}
}

func (a *Aggregator) Stats(ctx context.Context) (*Stats, error) {
	now := a.clock()
	today := timezone.Today(now, a.loc)
	tomorrow := timezone.Tomorrow(now, a.loc)
	windowStart := timezone.DateIn(now, a.loc, -WindowDays)

	st := &Stats{
		ByBranch:     map[string]int64{},
		BySA:         map[string]int64{},
		ByCRE:        map[string]int64{},
		SourceFunnel: map[string]Funnel{},
	}

	var err error

	// --------------------------------------------------
	// Today
	// --------------------------------------------------
	if st.TodayTotal, err = a.reader.CountOn(ctx, today); err != nil {
		return nil, err
	}

	branches, err := a.reader.GroupOn(ctx, domain.GroupBranch, today)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		st.ByBranch[b.Key] += b.Count
	}

	sas, err := a.reader.GroupOn(ctx, domain.GroupSA, today)
	if err != nil {
		return nil, err
	}
	for _, b := range sas {
		if b.Key == "" {
			continue
		}
		st.BySA[b.Key] += b.Count
	}

	cres, err := a.reader.GroupOn(ctx, domain.GroupCRE, today)
	if err != nil {
		return nil, err
	}
	if err := a.fillCRENames(ctx, st, cres); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Tomorrow
	// --------------------------------------------------
	if st.PendingTomorrow, err = a.reader.CountPendingOn(ctx, tomorrow); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Window: today-30 onwards
	// --------------------------------------------------
	totals, err := a.reader.Window(ctx, windowStart)
	if err != nil {
		return nil, err
	}
	st.NoShowCount = totals.NoShow
	st.RecoveredCount = totals.Recovered
	st.NoShowRate = rate(totals.NoShow, totals.Total)

	funnel, err := a.reader.Funnel(ctx, windowStart)
	if err != nil {
		return nil, err
	}
	for _, row := range funnel {
		st.SourceFunnel[row.Source] = Funnel{
			Booked:    row.Booked,
			Confirmed: row.Confirmed,
			Reported:  row.Reported,
		}
	}

	return st, nil
}

// fillCRENames keys the per-CRE counts by display name, falling back to
// the user id when the user no longer exists.
func (a *Aggregator) fillCRENames(ctx context.Context, st *Stats, buckets []domain.Bucket) error {
	ids := make([]string, 0, len(buckets))
	for _, b := range buckets {
		ids = append(ids, b.Key)
	}

	users, err := a.users.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserID] = u.Name
	}

	for _, b := range buckets {
		label := b.Key
		if name, ok := names[b.Key]; ok && name != "" {
			label = name
		}
		st.ByCRE[label] += b.Count
	}
	return nil
}

// rate is part/total as a percentage with one decimal; 0 when total is 0.
func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
