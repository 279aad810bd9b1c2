package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

const (
	popularItemsTop = 5
	revenueDays     = 7
)

type DashboardService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

// Dashboard aggregates the order table. Cancelled orders count towards the
// status breakdown but never towards revenue or popular items.
func (s *DashboardService) Dashboard(ctx context.Context) (*transport.Dashboard, error) {
	orders, err := s.Repo.AllOrders(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	today := now.Truncate(24 * time.Hour)
	firstDay := today.AddDate(0, 0, -(revenueDays - 1))

	open := make(map[orderstatus.Status]bool, len(orderstatus.Open))
	for _, st := range orderstatus.Open {
		open[st] = true
	}

	d := &transport.Dashboard{
		TotalRevenue:   decimal.Zero,
		RevenueToday:   decimal.Zero,
		OrdersByStatus: make(map[orderstatus.Status]int64, len(orderstatus.All())),
		PopularItems:   []transport.PopularItem{},
	}
	for _, st := range orderstatus.All() {
		d.OrdersByStatus[st] = 0
	}

	byDay := make(map[string]*transport.DayRevenue, revenueDays)
	days := make([]transport.DayRevenue, revenueDays)
	for i := range days {
		day := firstDay.AddDate(0, 0, i)
		days[i] = transport.DayRevenue{Date: day.Format(time.DateOnly), Revenue: decimal.Zero}
		byDay[days[i].Date] = &days[i]
	}
	quantities := map[string]int{}

	for _, o := range orders {
		st := orderstatus.Status(o.Status)
		created := o.CreatedAt.UTC()
		counted := st != orderstatus.Cancelled

		d.TotalOrders++
		d.OrdersByStatus[st]++
		if open[st] {
			d.PendingOrders++
		}
		if !created.Before(today) {
			d.OrdersToday++
			if counted {
				d.RevenueToday = d.RevenueToday.Add(o.Total)
			}
		}
		if !counted {
			continue
		}
		d.TotalRevenue = d.TotalRevenue.Add(o.Total)
		if day, ok := byDay[created.Format(time.DateOnly)]; ok {
			day.Revenue = day.Revenue.Add(o.Total)
			day.Orders++
		}
		for _, it := range o.Items {
			quantities[it.Name] += it.Quantity
		}
	}

	for name, qty := range quantities {
		d.PopularItems = append(d.PopularItems, transport.PopularItem{Name: name, Quantity: qty})
	}
	sort.Slice(d.PopularItems, func(i, j int) bool {
		a, b := d.PopularItems[i], d.PopularItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(d.PopularItems) > popularItemsTop {
		d.PopularItems = d.PopularItems[:popularItemsTop]
	}
	d.RevenueByDay = days
	return d, nil
}
