package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuCategory struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	Icon      string
	SortOrder int  `gorm:"not null"`
	IsActive  bool `gorm:"not null"`
}

type MenuItem struct {
	ID          string          `gorm:"primaryKey;size:36"`
	CategoryID  string          `gorm:"index;size:36;not null"`
	Name        string          `gorm:"not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Image       string
	IsPopular   bool `gorm:"index;not null"`
	IsAvailable bool `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DailyMenu struct {
	ID       string `gorm:"primaryKey;size:36"`
	Day      string `gorm:"index;not null"`
	Soup     string
	Main     string
	IsActive bool `gorm:"not null"`
}

type Customer struct {
	Name    string `gorm:"not null"`
	Phone   string `gorm:"not null"`
	Email   string
	Address string
	Notes   string
}

type Order struct {
	ID             string          `gorm:"primaryKey;size:36"`
	OrderNumber    string          `gorm:"uniqueIndex;not null"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Customer       Customer        `gorm:"embedded;embeddedPrefix:customer_"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DeliveryFee    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Total          decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status         string          `gorm:"index;not null"`
	OrderType      string          `gorm:"index;not null"`
	PaymentMethod  string          `gorm:"not null"`
	Lat            *float64
	Lng            *float64
	UpdatedBy      string
	// Nil for orders placed without a key; NULLs never collide.
	IdempotencyKey *string         `gorm:"uniqueIndex;size:64"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    string          `gorm:"index;size:36;not null"`
	MenuItemID string          `gorm:"size:36"`
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity   int             `gorm:"not null;check:quantity>0"`
}

// RestaurantInfo is a single-row table.
type RestaurantInfo struct {
	ID               uint `gorm:"primaryKey"`
	Name             string
	Tagline          string
	Phone            string
	Email            string
	Address          string
	Rating           float64
	ReviewCount      int
	ScheduleWeekdays string
	ScheduleWeekend  string
	HeroTitle        string
	HeroSubtitle     string
	HeroImage        string
	UpdatedAt        time.Time
}

type Review struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string `gorm:"not null"`
	Rating     int    `gorm:"not null;check:rating>=1 AND rating<=5"`
	Text       string `gorm:"not null"`
	IsApproved bool   `gorm:"index;not null"`
	CreatedAt  time.Time
}

type AdminUser struct {
	ID                  string `gorm:"primaryKey;size:36"`
	Email               string `gorm:"uniqueIndex;not null"`
	PasswordHash        string `gorm:"not null"`
	IsActive            bool   `gorm:"not null"`
	IsSuperadmin        bool   `gorm:"not null"`
	FailedLoginAttempts int    `gorm:"not null"`
	LockedUntil         *time.Time
	LastLogin           *time.Time
	CreatedAt           time.Time
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index;size:36;not null"`
	Token     string `gorm:"uniqueIndex;not null"`
	JTI       string `gorm:"uniqueIndex;not null"`
	ExpiresAt int64  `gorm:"not null"`
	Revoked   bool   `gorm:"not null"`
}

type PasswordResetToken struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"index;not null"`
	TokenHash string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
	Used      bool `gorm:"not null"`
	CreatedAt time.Time
}

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&MenuCategory{}, &MenuItem{}, &DailyMenu{},
		&Order{}, &OrderItem{},
		&RestaurantInfo{}, &Review{},
		&AdminUser{}, &RefreshToken{}, &PasswordResetToken{},
	}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (m *MenuCategory) BeforeCreate(*gorm.DB) error { newID(&m.ID); return nil }
func (m *MenuItem) BeforeCreate(*gorm.DB) error     { newID(&m.ID); return nil }
func (m *DailyMenu) BeforeCreate(*gorm.DB) error    { newID(&m.ID); return nil }
func (m *Order) BeforeCreate(*gorm.DB) error        { newID(&m.ID); return nil }
func (m *Review) BeforeCreate(*gorm.DB) error       { newID(&m.ID); return nil }
func (m *AdminUser) BeforeCreate(*gorm.DB) error    { newID(&m.ID); return nil }
