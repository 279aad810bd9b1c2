package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/panaghia/restaurant/pkg/orderstatus"
	"github.com/panaghia/restaurant/pkg/transport"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Administrare"}

	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Autentificare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autentificat ca %s\n", app.Session.User().Email)
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "adresa de email")
	login.Flags().StringVar(&password, "password", "", "parola")
	_ = login.MarkFlagRequired("email")
	_ = login.MarkFlagRequired("password")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Deconectare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deconectat.")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Utilizatorul curent",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			u, err := app.API.Me(cmd.Context())
			if err != nil {
				return err
			}
			role := "admin"
			if u.IsSuperadmin {
				role = "superadmin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.Email, role)
			return nil
		}),
	}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Statistici",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			d, err := app.API.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		}),
	}

	var current, next string
	passwd := &cobra.Command{
		Use:   "passwd",
		Short: "Schimbă parola",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			if err := app.API.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			// Every token is revoked server side.
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Parola a fost schimbată. Autentificați-vă din nou.")
			return nil
		}),
	}
	passwd.Flags().StringVar(&current, "current", "", "parola curentă")
	passwd.Flags().StringVar(&next, "new", "", "parola nouă")

	cmd.AddCommand(login, logout, whoami, dashboard, passwd, newPasswordResetCmd(app))
	cmd.AddCommand(newAdminOrderCmds(app)...)
	cmd.AddCommand(newAdminReviewCmds(app)...)
	cmd.AddCommand(newAdminMenuCmd(app), newAdminSettingsCmd(app))
	return cmd
}

func newAdminOrderCmds(app *App) []*cobra.Command {
	var filter transport.OrderFilter
	var status, orderType string
	orders := &cobra.Command{
		Use:   "orders",
		Short: "Lista comenzilor",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			filter.Status = orderstatus.Status(status)
			filter.OrderType = transport.OrderType(orderType)
			list, err := app.API.AdminOrders(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d comenzi\n", list.Total)
			return printOrderTable(cmd.OutOrStdout(), list.Orders)
		}),
	}
	f := orders.Flags()
	f.StringVar(&status, "status", "", "filtru după status")
	f.StringVar(&orderType, "type", "", "pickup sau delivery")
	f.StringVar(&filter.DateFrom, "from", "", "de la data YYYY-MM-DD")
	f.StringVar(&filter.DateTo, "to", "", "până la data YYYY-MM-DD, inclusiv")
	f.IntVar(&filter.Limit, "limit", 0, "numărul maxim de comenzi")
	f.IntVar(&filter.Skip, "skip", 0, "câte comenzi se sar")

	wf := orderstatus.NewWorkflow(app.API)

	advance := &cobra.Command{
		Use:   "advance <order-id>",
		Short: "Trece comanda la pasul următor",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			o, err := app.API.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s, err := wf.Advance(cmd.Context(), o.ID, o.Status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.OrderNumber, s.Meta().Label)
			return nil
		}),
	}

	setStatus := &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Setează explicit statusul",
		Args:  cobra.ExactArgs(2),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			target, err := orderstatus.Parse(args[1])
			if err != nil {
				return err
			}
			o, err := app.API.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s, err := wf.SetStatus(cmd.Context(), o.ID, o.Status, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.OrderNumber, s.Meta().Label)
			return nil
		}),
	}

	var confirmed bool
	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Anulează comanda",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			o, err := app.API.Order(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := wf.Cancel(cmd.Context(), o.ID, o.Status, confirmed); err != nil {
				if errors.Is(err, orderstatus.ErrNotConfirmed) {
					return fmt.Errorf("confirmați anularea cu --yes")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.OrderNumber, orderstatus.Cancelled.Meta().Label)
			return nil
		}),
	}
	cancel.Flags().BoolVar(&confirmed, "yes", false, "confirmă anularea")

	var deliveryStatus string
	deliveries := &cobra.Command{
		Use:   "deliveries",
		Short: "Comenzile de livrat",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			list, err := app.API.DeliveryOrders(cmd.Context(), orderstatus.Status(deliveryStatus))
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNUMĂR\tSTATUS\tADRESĂ\tCOORDONATE")
			for _, o := range list.Deliveries {
				at := "-"
				if o.Coordinates != nil {
					at = fmt.Sprintf("%.5f,%.5f", o.Coordinates.Lat, o.Coordinates.Lng)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.OrderNumber, o.Status.Meta().Label, o.Customer.Address, at)
			}
			return tw.Flush()
		}),
	}
	deliveries.Flags().StringVar(&deliveryStatus, "status", "", "un singur status în loc de cele active")

	coordinates := &cobra.Command{
		Use:   "coordinates <order-id> <lat> <lng>",
		Short: "Salvează coordonatele livrării",
		Args:  cobra.ExactArgs(3),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[1])
			}
			lng, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[2])
			}
			if err := app.API.SetDeliveryCoordinates(cmd.Context(), args[0], transport.Coordinates{Lat: lat, Lng: lng}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Coordonate salvate.")
			return nil
		}),
	}

	return []*cobra.Command{orders, advance, setStatus, cancel, deliveries, coordinates}
}

func newAdminReviewCmds(app *App) []*cobra.Command {
	reviews := &cobra.Command{
		Use:   "reviews",
		Short: "Toate recenziile",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			list, err := app.API.AdminReviews(cmd.Context(), nil)
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), list)
			return nil
		}),
	}

	var hide bool
	approve := &cobra.Command{
		Use:   "approve <review-id>",
		Short: "Publică sau ascunde o recenzie",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			if err := app.API.ApproveReview(cmd.Context(), args[0], !hide); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recenzie actualizată.")
			return nil
		}),
	}
	approve.Flags().BoolVar(&hide, "hide", false, "ascunde recenzia")

	reviews.AddCommand(&cobra.Command{
		Use:   "delete <review-id>",
		Short: "Șterge definitiv o recenzie",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			if err := app.API.DeleteReview(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recenzie ștearsă.")
			return nil
		}),
	})

	return []*cobra.Command{reviews, approve}
}

func printOrderTable(w io.Writer, orders []transport.Order) error {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNUMĂR\tSTATUS\tTIP\tCLIENT\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.OrderNumber, o.Status.Meta().Label, o.OrderType, o.Customer.Name, lei(o.Total))
	}
	return tw.Flush()
}

func printDashboard(w io.Writer, d *transport.Dashboard) {
	fmt.Fprintf(w, "Comenzi: %d (azi %d, în lucru %d)\n", d.TotalOrders, d.OrdersToday, d.PendingOrders)
	fmt.Fprintf(w, "Venituri: %s (azi %s)\n", lei(d.TotalRevenue), lei(d.RevenueToday))
	for _, s := range orderstatus.All() {
		fmt.Fprintf(w, "  %-14s %d\n", s.Meta().Label, d.OrdersByStatus[s])
	}
	if len(d.PopularItems) > 0 {
		fmt.Fprintln(w, "Populare:")
		for _, p := range d.PopularItems {
			fmt.Fprintf(w, "  %d x %s\n", p.Quantity, p.Name)
		}
	}
	for _, r := range d.RevenueByDay {
		fmt.Fprintf(w, "  %s  %3d  %s\n", r.Date, r.Orders, lei(r.Revenue))
	}
}
