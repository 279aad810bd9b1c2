package models

import (
	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

func (m MenuCategory) DTO() transport.MenuCategory {
	return transport.MenuCategory{
		ID:       m.ID,
		Name:     m.Name,
		Slug:     m.Slug,
		Icon:     m.Icon,
		Order:    m.SortOrder,
		IsActive: m.IsActive,
	}
}

func (m MenuItem) DTO() transport.MenuItem {
	return transport.MenuItem{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Image:       m.Image,
		IsPopular:   m.IsPopular,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (m DailyMenu) DTO() transport.DailyMenu {
	return transport.DailyMenu{ID: m.ID, Day: m.Day, Soup: m.Soup, Main: m.Main, IsActive: m.IsActive}
}

func (o Order) DTO() transport.Order {
	items := make([]transport.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, transport.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}
	out := transport.Order{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Items:       items,
		Customer: transport.CustomerInfo{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Email:   o.Customer.Email,
			Address: o.Customer.Address,
			Notes:   o.Customer.Notes,
		},
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		Status:        orderstatus.Status(o.Status),
		OrderType:     transport.OrderType(o.OrderType),
		PaymentMethod: transport.PaymentMethod(o.PaymentMethod),
		UpdatedBy:     o.UpdatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Lat != nil && o.Lng != nil {
		out.Coordinates = &transport.Coordinates{Lat: *o.Lat, Lng: *o.Lng}
	}
	return out
}

func (r RestaurantInfo) DTO() transport.RestaurantInfo {
	return transport.RestaurantInfo{
		Name:         r.Name,
		Tagline:      r.Tagline,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		Schedule:     transport.RestaurantSchedule{Weekdays: r.ScheduleWeekdays, Weekend: r.ScheduleWeekend},
		HeroTitle:    r.HeroTitle,
		HeroSubtitle: r.HeroSubtitle,
		HeroImage:    r.HeroImage,
	}
}

func (r Review) DTO() transport.Review {
	return transport.Review{
		ID:         r.ID,
		Name:       r.Name,
		Rating:     r.Rating,
		Text:       r.Text,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
	}
}

func (u AdminUser) DTO() transport.User {
	return transport.User{ID: u.ID, Email: u.Email, IsSuperadmin: u.IsSuperadmin}
}

// DefaultRestaurantInfo is served until an admin saves real data.
func DefaultRestaurantInfo() RestaurantInfo {
	return RestaurantInfo{
		Name:             "Panaghia",
		Tagline:          "Bucătărie tradițională românească",
		Phone:            "+40 700 000 000",
		Email:            "contact@panaghia.ro",
		Address:          "Str. Principală 1",
		Rating:           0,
		ScheduleWeekdays: "10:00 - 22:00",
		ScheduleWeekend:  "11:00 - 23:00",
		HeroTitle:        "Gusturi de acasă",
		HeroSubtitle:     "Comandă online, ridică sau primește acasă",
	}
}
