// Package checkout turns the cart and the customer form into an order.
//
// The flow is Editing -> Submitting -> Success | Error, and Error returns to
// Editing. Validation runs before any network call and a submit makes
// exactly one call.
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/panaghia/restaurant/pkg/cart"
	"github.com/panaghia/restaurant/pkg/transport"
)

// DeliveryFee is the flat fee added to delivery orders.
var DeliveryFee = decimal.NewFromInt(10)

// GenericErrorMessage is shown on any failed submit.
const GenericErrorMessage = "A apărut o eroare la plasarea comenzii. Vă rugăm să încercați din nou."

type Phase int

const (
	Editing Phase = iota
	Submitting
	Success
	Failed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "error"
	}
	return "unknown"
}

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrSubmitting = errors.New("order is already being submitted")
	ErrNotEditing = errors.New("order form is not editable")
)

type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "missing required fields: " + strings.Join(names, ", ")
}

func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validate checks the customer fields required by the order type.
func Validate(c transport.CustomerInfo, orderType transport.OrderType) error {
	var fields []FieldError
	if strings.TrimSpace(c.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "Numele este obligatoriu"})
	}
	if strings.TrimSpace(c.Phone) == "" {
		fields = append(fields, FieldError{Field: "phone", Message: "Telefonul este obligatoriu"})
	}
	if orderType == transport.Delivery && strings.TrimSpace(c.Address) == "" {
		fields = append(fields, FieldError{Field: "address", Message: "Adresa este obligatorie pentru livrare"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

func ComputeTotals(snap cart.Snapshot, orderType transport.OrderType) Totals {
	fee := decimal.Zero
	if orderType == transport.Delivery {
		fee = DeliveryFee
	}
	sub := snap.Subtotal()
	return Totals{Subtotal: sub, DeliveryFee: fee, Total: sub.Add(fee)}
}

// BuildRequest maps a cart snapshot and form to the order creation body.
func BuildRequest(snap cart.Snapshot, c transport.CustomerInfo, orderType transport.OrderType, pm transport.PaymentMethod) transport.CreateOrderRequest {
	lines := snap.Lines()
	items := make([]transport.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, transport.OrderItem{
			MenuItemID: l.ID,
			Name:       l.Name,
			Price:      l.Price,
			Quantity:   l.Quantity,
		})
	}
	if orderType != transport.Delivery {
		c.Address = ""
	}
	return transport.CreateOrderRequest{
		Items:         items,
		Customer:      c,
		OrderType:     orderType,
		PaymentMethod: pm,
	}
}

// IdempotencyKey binds a request to one order attempt. The same nonce and
// the same cart and form give the same key; any change gives a new one.
func IdempotencyKey(nonce string, req transport.CreateOrderRequest) string {
	req.IdempotencyKey = ""
	raw, _ := json.Marshal(req)
	h := sha256.New()
	h.Write([]byte(nonce))
	h.Write([]byte{'\n'})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil))
}

// OrderAPI creates an order on the server.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*transport.Order, error)
}

type Receipt struct {
	OrderID     string
	OrderNumber string
	Total       decimal.Decimal
}

// Flow is one order session bound to a cart.
type Flow struct {
	api  OrderAPI
	cart *cart.Store
	log  *slog.Logger

	mu            sync.Mutex
	phase         Phase
	customer      transport.CustomerInfo
	orderType     transport.OrderType
	paymentMethod transport.PaymentMethod
	receipt       *Receipt
	errMsg        string
	nonce         string
}

func NewFlow(api OrderAPI, c *cart.Store, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{
		api:           api,
		cart:          c,
		log:           log,
		orderType:     transport.Pickup,
		paymentMethod: transport.Cash,
		nonce:         uuid.NewString(),
	}
}

// Nonce identifies the current order attempt. It changes after a placed
// order and on Reset.
func (f *Flow) Nonce() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce
}

// ResumeNonce continues an attempt started by an earlier flow, so a submit
// interrupted before its response arrived is not placed twice.
func (f *Flow) ResumeNonce(nonce string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if nonce != "" && f.phase != Submitting {
		f.nonce = nonce
	}
}

func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) Customer() transport.CustomerInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customer
}

func (f *Flow) OrderType() transport.OrderType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderType
}

func (f *Flow) PaymentMethod() transport.PaymentMethod {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paymentMethod
}

// Receipt is set only in the Success phase.
func (f *Flow) Receipt() *Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receipt == nil {
		return nil
	}
	r := *f.receipt
	return &r
}

// ErrorMessage is set only in the Error phase.
func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

func (f *Flow) SetCustomer(c transport.CustomerInfo) error {
	return f.edit(func() { f.customer = c })
}

func (f *Flow) SetOrderType(t transport.OrderType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown order type %q", t)
	}
	return f.edit(func() { f.orderType = t })
}

func (f *Flow) SetPaymentMethod(pm transport.PaymentMethod) error {
	if !pm.Valid() {
		return fmt.Errorf("unknown payment method %q", pm)
	}
	return f.edit(func() { f.paymentMethod = pm })
}

// edit applies a form change. Editing the form after an error returns the
// flow to Editing.
func (f *Flow) edit(apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.phase {
	case Submitting:
		return ErrSubmitting
	case Success:
		return ErrNotEditing
	}
	apply()
	f.phase = Editing
	f.errMsg = ""
	return nil
}

// Totals is recomputed from the live cart on every call.
func (f *Flow) Totals() Totals {
	f.mu.Lock()
	t := f.orderType
	f.mu.Unlock()
	return ComputeTotals(f.cart.Snapshot(), t)
}

// CanSubmit mirrors the enabled state of the submit control.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == Submitting || f.phase == Success {
		return false
	}
	if f.cart.Snapshot().IsEmpty() {
		return false
	}
	return Validate(f.customer, f.orderType) == nil
}

// Submit places the order. Validation and empty-cart errors leave the flow in
// Editing without touching the network.
func (f *Flow) Submit(ctx context.Context) (*Receipt, error) {
	f.mu.Lock()
	switch f.phase {
	case Submitting:
		f.mu.Unlock()
		return nil, ErrSubmitting
	case Success:
		f.mu.Unlock()
		return nil, ErrNotEditing
	}
	snap := f.cart.Snapshot()
	if snap.IsEmpty() {
		f.mu.Unlock()
		return nil, ErrEmptyCart
	}
	if err := Validate(f.customer, f.orderType); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	req := BuildRequest(snap, f.customer, f.orderType, f.paymentMethod)
	req.IdempotencyKey = IdempotencyKey(f.nonce, req)
	f.phase = Submitting
	f.errMsg = ""
	f.mu.Unlock()

	order, err := f.api.CreateOrder(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		f.phase = Editing
		return nil, ctxErr
	}
	if err != nil {
		f.log.Warn("checkout_error", "reason", "create order failed", "error", err)
		f.phase = Failed
		f.errMsg = GenericErrorMessage
		return nil, err
	}

	f.cart.Clear()
	f.receipt = &Receipt{OrderID: order.ID, OrderNumber: order.OrderNumber, Total: order.Total}
	f.phase = Success
	f.nonce = uuid.NewString()
	f.log.Info("checkout_success", "order_number", order.OrderNumber)
	r := *f.receipt
	return &r, nil
}

// Edit leaves the Error phase keeping every field as entered.
func (f *Flow) Edit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == Failed {
		f.phase = Editing
		f.errMsg = ""
	}
}

// Reset starts a new order session after a successful submit.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == Submitting {
		return
	}
	f.phase = Editing
	f.customer = transport.CustomerInfo{}
	f.receipt = nil
	f.errMsg = ""
	f.nonce = uuid.NewString()
}
