package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panaghia/restaurant/pkg/checkout"
	"github.com/panaghia/restaurant/pkg/session"
	"github.com/panaghia/restaurant/pkg/storage"
	"github.com/panaghia/restaurant/pkg/transport"
)

func newCheckoutCmd(app *App) *cobra.Command {
	var (
		customer  transport.CustomerInfo
		orderType string
		payment   string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Plasează comanda din coș",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flow := checkout.NewFlow(app.API, app.Cart, app.Log)
			if err := flow.SetOrderType(transport.OrderType(orderType)); err != nil {
				return err
			}
			if err := flow.SetPaymentMethod(transport.PaymentMethod(payment)); err != nil {
				return err
			}
			if err := flow.SetCustomer(customer); err != nil {
				return err
			}
			if err := app.resumeCheckout(ctx, flow); err != nil {
				return err
			}

			receipt, err := flow.Submit(ctx)
			if err != nil {
				if msg := flow.ErrorMessage(); msg != "" {
					app.Log.Debug("checkout_failed", "error", err)
					return &userError{msg: msg, err: err}
				}
				return err
			}
			if err := app.KV.Delete(context.WithoutCancel(ctx), storage.KeyCheckoutNonce); err != nil {
				app.Log.Warn("state_write_error", "key", storage.KeyCheckoutNonce, "error", err)
			}
			if err := app.saveCart(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Comanda a fost plasată!")
			fmt.Fprintf(out, "Număr comandă: %s\n", receipt.OrderNumber)
			fmt.Fprintf(out, "Total: %s\n", lei(receipt.Total))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&customer.Name, "name", "", "numele clientului")
	f.StringVar(&customer.Phone, "phone", "", "telefon")
	f.StringVar(&customer.Email, "email", "", "email (opțional)")
	f.StringVar(&customer.Address, "address", "", "adresa de livrare")
	f.StringVar(&customer.Notes, "notes", "", "observații")
	f.StringVar(&orderType, "type", string(transport.Pickup), "pickup sau delivery")
	f.StringVar(&payment, "payment", string(transport.Cash), "cash sau card")
	return cmd
}

// resumeCheckout carries the attempt nonce across invocations until an order
// is placed, so an interrupted checkout retried as is finds the first order.
func (a *App) resumeCheckout(ctx context.Context, flow *checkout.Flow) error {
	nonce, err := a.KV.Get(ctx, storage.KeyCheckoutNonce)
	switch {
	case err == nil:
		flow.ResumeNonce(nonce)
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return a.KV.Set(ctx, storage.KeyCheckoutNonce, flow.Nonce())
	default:
		return err
	}
}

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "order", Short: "Comenzi plasate"}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <număr>",
		Short: "Starea unei comenzi",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.API.OrderByNumber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(cmd.OutOrStdout(), o)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <id>",
		Short: "Anulează o comandă",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.CancelOrder(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Comandă anulată.")
			return nil
		},
	})
	return cmd
}

func printOrder(w io.Writer, o *transport.Order) {
	fmt.Fprintf(w, "Comanda %s (%s)\n", o.OrderNumber, o.ID)
	fmt.Fprintf(w, "Status: %s\n", o.Status.Meta().Label)
	fmt.Fprintf(w, "Tip: %s, plată: %s\n", o.OrderType, o.PaymentMethod)
	fmt.Fprintf(w, "Client: %s, %s\n", o.Customer.Name, o.Customer.Phone)
	if o.Customer.Address != "" {
		fmt.Fprintf(w, "Adresă: %s\n", o.Customer.Address)
	}
	for _, it := range o.Items {
		fmt.Fprintf(w, "  %d x %s\n", it.Quantity, it.Name)
	}
	fmt.Fprintf(w, "Total: %s\n", lei(o.Total))
}

func newReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "review", Short: "Recenzii"}

	var in transport.ReviewInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Lasă o recenzie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rv, err := app.API.SubmitReview(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mulțumim, %s! Recenzia a fost publicată (%s).\n", rv.Name, strings.Repeat("★", rv.Rating))
			return nil
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "numele")
	add.Flags().IntVar(&in.Rating, "rating", 5, "nota 1-5")
	add.Flags().StringVar(&in.Text, "text", "", "textul recenziei")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Recenziile publicate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app.API.Reviews(cmd.Context())
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), list)
			return nil
		},
	})
	return cmd
}

func printReviews(w io.Writer, list *transport.ReviewList) {
	fmt.Fprintf(w, "%d recenzii\n", list.Total)
	for _, r := range list.Reviews {
		mark := ""
		if !r.IsApproved {
			mark = " (ascunsă)"
		}
		fmt.Fprintf(w, "%s  %d/5  %s%s: %s\n", r.ID, r.Rating, r.Name, mark, r.Text)
	}
}

func newConsentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "consent", Short: "Acordul pentru cookie-uri"}

	set := func(use, short, choice string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := session.SetCookieConsent(cmd.Context(), app.KV, choice); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Consimțământ: %s\n", choice)
				return nil
			},
		}
	}
	cmd.AddCommand(
		set("accept", "Acceptă cookie-urile", session.ConsentAccepted),
		set("refuse", "Refuză cookie-urile", session.ConsentRefused),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Alegerea salvată",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			choice, err := session.CookieConsent(cmd.Context(), app.KV)
			if err != nil {
				return err
			}
			if choice == "" {
				choice = "neales"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Consimțământ: %s\n", choice)
			return nil
		},
	})
	return cmd
}
