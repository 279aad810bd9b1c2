package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/panaghia/restaurant/pkg/transport"
)

func TestRender(t *testing.T) {
	t.Parallel()

	order := &transport.Order{
		OrderNumber: "ORD-20250301121500-1A2B",
		Customer:    transport.CustomerInfo{Name: "Ana", Phone: "0740", Address: "Str. Mare 1", Notes: "interfon 12"},
		Items: []transport.OrderItem{
			{Name: "Ciorbă", Price: decimal.NewFromInt(18), Quantity: 2},
		},
		Total:         decimal.NewFromInt(46),
		OrderType:     transport.Delivery,
		PaymentMethod: transport.Cash,
	}

	tests := []struct {
		name string
		msg  Message
		want []string
	}{
		{
			name: "new order",
			msg:  Message{Kind: KindNewOrder, Order: order},
			want: []string{"ORD-20250301121500-1A2B", "Livrare la: Str. Mare 1", "2 x Ciorbă (18.00 lei)", "interfon 12", "Total: 46.00 lei (cash)"},
		},
		{
			name: "password reset",
			msg:  Message{Kind: KindPasswordReset, Email: "admin@panaghia.ro", ResetToken: "tok"},
			want: []string{"admin@panaghia.ro", "Cod: tok"},
		},
		{
			name: "unknown kind",
			msg:  Message{Kind: "other"},
			want: []string{"Notificare other"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := Render(tt.msg)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}
