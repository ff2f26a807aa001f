package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

const (
	recentWindow       = 7 * 24 * time.Hour
	recentActivityMax  = 5
	upcomingMax        = 10
	recentPetsMax      = 10
	revenueHistoryDays = 7
)

// Alert severities.
const (
	SeverityLow      = "low"
	SeverityCritical = "critical"
)

// Stats summarises the clinic's current day.
type Stats struct {
	TodayAppointments int   `json:"today_appointments"`
	PendingPayments   int   `json:"pending_payments"`
	TotalPets         int   `json:"total_pets"`
	LowStockItems     int   `json:"low_stock_items"`
	RevenueToday      int64 `json:"revenue_today"`
	CompletedToday    int   `json:"completed_today"`
}

// RecentActivity lists appointments and invoices created in the last week.
type RecentActivity struct {
	RecentAppointments []model.Appointment `json:"recent_appointments"`
	RecentInvoices     []model.Invoice     `json:"recent_invoices"`
}

// Performance compares this month with the previous one.
type Performance struct {
	MonthlyRevenue          int64    `json:"monthly_revenue"`
	LastMonthRevenue        int64    `json:"last_month_revenue"`
	RevenueChange           float64  `json:"revenue_change"`
	ActiveClients           int      `json:"active_clients"`
	CompletionRate          float64  `json:"completion_rate"`
	LastMonthCompletionRate float64  `json:"last_month_completion_rate"`
	CompletionRateChange    float64  `json:"completion_rate_change"`
	Insights                []string `json:"insights"`
}

// RevenuePoint is the revenue of one day.
type RevenuePoint struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

// Revenue holds daily revenue for the last week, oldest first.
type Revenue struct {
	Daily        []RevenuePoint `json:"daily"`
	Week         int64          `json:"week"`
	PreviousWeek int64          `json:"previous_week"`
	Growth       float64        `json:"growth"`
}

// UpcomingAppointment is an appointment with the names needed to display it.
type UpcomingAppointment struct {
	model.Appointment
	PetName   string `json:"pet_name"`
	OwnerName string `json:"owner_name"`
}

// InventoryAlert flags an item at or below its minimum stock.
type InventoryAlert struct {
	ID           int64  `json:"id"`
	Item         string `json:"item"`
	CurrentStock int64  `json:"current_stock"`
	MinStock     int64  `json:"min_stock"`
	Severity     string `json:"severity"`
}

// RecentPet is a pet registered in the last week.
type RecentPet struct {
	model.Pet
	OwnerName string `json:"owner_name"`
}

// snapshot is the part of a clinic's data the dashboard is computed from.
type snapshot struct {
	appointments []model.Appointment
	invoices     []model.Invoice
	pets         []model.Pet
	owners       []model.Owner
	inventory    []model.InventoryItem
}

// snapshot loads the clinic's collections concurrently.
func (s *Service) snapshot(ctx context.Context) (*snapshot, time.Time, error) {
	clinic, err := tenant.Require(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	now := s.now().In(s.location(ctx, clinic))

	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.appointments, err = store.ListAppointments(gctx, s.DB, clinic, store.AppointmentFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.invoices, err = store.ListInvoices(gctx, s.DB, clinic, store.InvoiceFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.pets, err = store.ListPets(gctx, s.DB, clinic, 0)
		return err
	})
	g.Go(func() (err error) {
		snap.owners, err = store.ListOwners(gctx, s.DB, clinic, "")
		return err
	})
	g.Go(func() (err error) {
		snap.inventory, err = store.ListInventoryItems(gctx, s.DB, clinic, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, time.Time{}, fmt.Errorf("loading dashboard data: %w", err)
	}
	return &snap, now, nil
}

// DashboardStats returns today's figures.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	snap, now, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(snap, now), nil
}

func (s *Service) DashboardRecentActivity(ctx context.Context) (*RecentActivity, error) {
	snap, now, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeRecentActivity(snap, now), nil
}

func (s *Service) DashboardPerformance(ctx context.Context) (*Performance, error) {
	snap, now, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computePerformance(snap, now), nil
}

func (s *Service) DashboardRevenue(ctx context.Context) (*Revenue, error) {
	snap, now, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeRevenue(snap, now), nil
}

func (s *Service) DashboardUpcoming(ctx context.Context) ([]UpcomingAppointment, error) {
	snap, now, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeUpcoming(snap, now), nil
}

func (s *Service) DashboardInventoryAlerts(ctx context.Context) ([]InventoryAlert, error) {
	snap, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeInventoryAlerts(snap), nil
}

func (s *Service) DashboardRecentPets(ctx context.Context) ([]RecentPet, error) {
	snap, now, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return computeRecentPets(snap, now), nil
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// revenueBetween sums paid invoices whose paid date falls in [from, to).
func revenueBetween(invoices []model.Invoice, from, to time.Time) int64 {
	var sum int64
	for _, inv := range invoices {
		if inv.Status == model.InvoicePaid && inv.PaidDate != nil && within(*inv.PaidDate, from, to) {
			sum += inv.Total
		}
	}
	return sum
}

// percentChange returns the change from prev to cur in percent, rounded to
// one decimal. From a zero baseline any growth counts as 100%.
func percentChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return round1((cur - prev) / prev * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func computeStats(snap *snapshot, now time.Time) *Stats {
	today := model.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	st := &Stats{TotalPets: len(snap.pets)}
	for _, a := range snap.appointments {
		if !within(a.ScheduledAt, today, tomorrow) {
			continue
		}
		st.TodayAppointments++
		if a.Status == model.AppointmentCompleted {
			st.CompletedToday++
		}
	}
	for _, inv := range snap.invoices {
		if inv.Status == model.InvoiceSent {
			st.PendingPayments++
		}
	}
	for _, it := range snap.inventory {
		if it.LowStock() {
			st.LowStockItems++
		}
	}
	st.RevenueToday = revenueBetween(snap.invoices, today, tomorrow)
	return st
}

func computeRecentActivity(snap *snapshot, now time.Time) *RecentActivity {
	since := now.Add(-recentWindow)

	appointments := slices.DeleteFunc(slices.Clone(snap.appointments), func(a model.Appointment) bool {
		return a.CreatedAt.Before(since)
	})
	slices.SortFunc(appointments, func(a, b model.Appointment) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})

	invoices := slices.DeleteFunc(slices.Clone(snap.invoices), func(inv model.Invoice) bool {
		return inv.CreatedAt.Before(since)
	})
	slices.SortFunc(invoices, func(a, b model.Invoice) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})

	return &RecentActivity{
		RecentAppointments: appointments[:min(len(appointments), recentActivityMax)],
		RecentInvoices:     invoices[:min(len(invoices), recentActivityMax)],
	}
}

// completionRate returns the share of appointments in [from, to) that were
// completed, in percent.
func completionRate(appointments []model.Appointment, from, to time.Time) float64 {
	var total, completed int
	for _, a := range appointments {
		if !within(a.ScheduledAt, from, to) {
			continue
		}
		total++
		if a.Status == model.AppointmentCompleted {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

func computePerformance(snap *snapshot, now time.Time) *Performance {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	lastMonth := monthStart.AddDate(0, -1, 0)

	p := &Performance{
		MonthlyRevenue:          revenueBetween(snap.invoices, monthStart, nextMonth),
		LastMonthRevenue:        revenueBetween(snap.invoices, lastMonth, monthStart),
		CompletionRate:          completionRate(snap.appointments, monthStart, nextMonth),
		LastMonthCompletionRate: completionRate(snap.appointments, lastMonth, monthStart),
	}
	p.RevenueChange = percentChange(float64(p.MonthlyRevenue), float64(p.LastMonthRevenue))
	p.CompletionRateChange = round1(p.CompletionRate - p.LastMonthCompletionRate)

	ownerOf := make(map[int64]int64, len(snap.pets))
	for _, pet := range snap.pets {
		ownerOf[pet.ID] = pet.OwnerID
	}
	clients := make(map[int64]struct{})
	for _, a := range snap.appointments {
		if owner, ok := ownerOf[a.PetID]; ok && within(a.ScheduledAt, monthStart, nextMonth) {
			clients[owner] = struct{}{}
		}
	}
	p.ActiveClients = len(clients)

	p.Insights = performanceInsights(p)
	return p
}

func performanceInsights(p *Performance) []string {
	var insights []string
	switch {
	case p.RevenueChange > 0:
		insights = append(insights, fmt.Sprintf("Revenue is up %.1f%% compared to last month", p.RevenueChange))
	case p.RevenueChange < 0:
		insights = append(insights, fmt.Sprintf("Revenue is down %.1f%% compared to last month", -p.RevenueChange))
	default:
		insights = append(insights, "Revenue is unchanged from last month")
	}

	switch {
	case p.CompletionRateChange > 0:
		insights = append(insights, fmt.Sprintf("Appointment completion rate improved by %.1f points", p.CompletionRateChange))
	case p.CompletionRateChange < 0:
		insights = append(insights, fmt.Sprintf("Appointment completion rate dropped by %.1f points", -p.CompletionRateChange))
	}

	if p.ActiveClients > 0 {
		insights = append(insights, fmt.Sprintf("%d active clients this month", p.ActiveClients))
	}
	return insights
}

func computeRevenue(snap *snapshot, now time.Time) *Revenue {
	today := model.StartOfDay(now)
	start := today.AddDate(0, 0, -(revenueHistoryDays - 1))

	r := &Revenue{Daily: make([]RevenuePoint, 0, revenueHistoryDays)}
	for i := range revenueHistoryDays {
		day := start.AddDate(0, 0, i)
		amount := revenueBetween(snap.invoices, day, day.AddDate(0, 0, 1))
		r.Daily = append(r.Daily, RevenuePoint{Date: day.Format(time.DateOnly), Amount: amount})
		r.Week += amount
	}
	r.PreviousWeek = revenueBetween(snap.invoices, start.AddDate(0, 0, -revenueHistoryDays), start)
	r.Growth = percentChange(float64(r.Week), float64(r.PreviousWeek))
	return r
}

func names(snap *snapshot) (pets map[int64]model.Pet, owners map[int64]string) {
	pets = make(map[int64]model.Pet, len(snap.pets))
	for _, p := range snap.pets {
		pets[p.ID] = p
	}
	owners = make(map[int64]string, len(snap.owners))
	for _, o := range snap.owners {
		owners[o.ID] = o.FullName()
	}
	return pets, owners
}

func computeUpcoming(snap *snapshot, now time.Time) []UpcomingAppointment {
	pets, owners := names(snap)
	until := now.Add(recentWindow)

	upcoming := []UpcomingAppointment{}
	for _, a := range snap.appointments {
		if !a.Open() || !within(a.ScheduledAt, now, until) {
			continue
		}
		pet := pets[a.PetID]
		upcoming = append(upcoming, UpcomingAppointment{Appointment: a, PetName: pet.Name, OwnerName: owners[pet.OwnerID]})
	}
	slices.SortFunc(upcoming, func(a, b UpcomingAppointment) int {
		return cmp.Or(a.ScheduledAt.Compare(b.ScheduledAt), cmp.Compare(a.ID, b.ID))
	})
	return upcoming[:min(len(upcoming), upcomingMax)]
}

func computeInventoryAlerts(snap *snapshot) []InventoryAlert {
	alerts := []InventoryAlert{}
	for _, it := range snap.inventory {
		if !it.LowStock() {
			continue
		}
		severity := SeverityLow
		if float64(it.CurrentStock) <= float64(it.MinStock)/2 {
			severity = SeverityCritical
		}
		alerts = append(alerts, InventoryAlert{
			ID: it.ID, Item: it.Name, CurrentStock: it.CurrentStock, MinStock: it.MinStock, Severity: severity,
		})
	}
	slices.SortStableFunc(alerts, func(a, b InventoryAlert) int {
		if a.Severity == b.Severity {
			return 0
		}
		if a.Severity == SeverityCritical {
			return -1
		}
		return 1
	})
	return alerts
}

func computeRecentPets(snap *snapshot, now time.Time) []RecentPet {
	_, owners := names(snap)
	since := now.Add(-recentWindow)

	recent := []RecentPet{}
	for _, p := range snap.pets {
		if !p.CreatedAt.Before(since) {
			recent = append(recent, RecentPet{Pet: p, OwnerName: owners[p.OwnerID]})
		}
	}
	slices.SortFunc(recent, func(a, b RecentPet) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return recent[:min(len(recent), recentPetsMax)]
}
