// Package transport holds the JSON bodies of the REST API. Both the server
// handlers and pkg/apiclient speak in these types.
package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/panaghia/restaurant/pkg/orderstatus"
)

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderType string

const (
	Pickup   OrderType = "pickup"
	Delivery OrderType = "delivery"
)

func (t OrderType) Valid() bool { return t == Pickup || t == Delivery }

type PaymentMethod string

const (
	Cash PaymentMethod = "cash"
	Card PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool { return p == Cash || p == Card }

type MenuCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"`
	IsActive bool   `json:"is_active"`
}

type CategoryInput struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	Icon     *string `json:"icon"`
	Order    *int    `json:"order"`
	IsActive *bool   `json:"is_active"`
}

type MenuItem struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	IsPopular   bool            `json:"is_popular"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MenuItemInput is used for both create and partial update; nil fields are
// left untouched on update.
type MenuItemInput struct {
	CategoryID  *string          `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	IsPopular   *bool            `json:"is_popular"`
	IsAvailable *bool            `json:"is_available"`
}

type MenuSearchResult struct {
	Query string     `json:"query"`
	Total int64      `json:"total"`
	Items []MenuItem `json:"items"`
}

type DailyMenu struct {
	ID       string `json:"id"`
	Day      string `json:"day"`
	Soup     string `json:"soup"`
	Main     string `json:"main"`
	IsActive bool   `json:"is_active"`
}

type DailyMenuInput struct {
	Day      *string `json:"day"`
	Soup     *string `json:"soup"`
	Main     *string `json:"main"`
	IsActive *bool   `json:"is_active"`
}

type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type CreateOrderRequest struct {
	Items         []OrderItem   `json:"items"`
	Customer      CustomerInfo  `json:"customer"`
	OrderType     OrderType     `json:"order_type"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	// IdempotencyKey makes a repeated submit return the first order.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Order struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"order_number"`
	Items         []OrderItem        `json:"items"`
	Customer      CustomerInfo       `json:"customer"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DeliveryFee   decimal.Decimal    `json:"delivery_fee"`
	Total         decimal.Decimal    `json:"total"`
	Status        orderstatus.Status `json:"status"`
	OrderType     OrderType          `json:"order_type"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
	Coordinates   *Coordinates       `json:"coordinates"`
	UpdatedBy     string             `json:"updated_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type StatusUpdate struct {
	Status orderstatus.Status `json:"status"`
}

type OrderList struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Skip   int     `json:"skip"`
}

// OrderFilter is the query of GET /api/admin/orders. Dates are YYYY-MM-DD.
type OrderFilter struct {
	Status    orderstatus.Status
	OrderType OrderType
	DateFrom  string
	DateTo    string
	Limit     int
	Skip      int
}

type DeliveryList struct {
	Deliveries []Order `json:"deliveries"`
	Total      int     `json:"total"`
}

type RestaurantSchedule struct {
	Weekdays string `json:"weekdays"`
	Weekend  string `json:"weekend"`
}

type RestaurantInfo struct {
	Name         string             `json:"name"`
	Tagline      string             `json:"tagline"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email"`
	Address      string             `json:"address"`
	Rating       float64            `json:"rating"`
	ReviewCount  int                `json:"review_count"`
	Schedule     RestaurantSchedule `json:"schedule"`
	HeroTitle    string             `json:"hero_title"`
	HeroSubtitle string             `json:"hero_subtitle"`
	HeroImage    string             `json:"hero_image"`
}

type RestaurantInfoInput struct {
	Name         *string             `json:"name"`
	Tagline      *string             `json:"tagline"`
	Phone        *string             `json:"phone"`
	Email        *string             `json:"email"`
	Address      *string             `json:"address"`
	Schedule     *RestaurantSchedule `json:"schedule"`
	HeroTitle    *string             `json:"hero_title"`
	HeroSubtitle *string             `json:"hero_subtitle"`
	HeroImage    *string             `json:"hero_image"`
}

type Review struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewInput struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

type ReviewList struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

type ReviewApproval struct {
	IsApproved bool `json:"is_approved"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

type PopularItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type DayRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type Dashboard struct {
	TotalOrders    int64                        `json:"total_orders"`
	TotalRevenue   decimal.Decimal              `json:"total_revenue"`
	OrdersToday    int64                        `json:"orders_today"`
	RevenueToday   decimal.Decimal              `json:"revenue_today"`
	PendingOrders  int64                        `json:"pending_orders"`
	PopularItems   []PopularItem                `json:"popular_items"`
	OrdersByStatus map[orderstatus.Status]int64 `json:"orders_by_status"`
	RevenueByDay   []DayRevenue                 `json:"revenue_by_day"`
}

type Message struct {
	Message string `json:"message"`
}
