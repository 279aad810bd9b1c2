package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/panaghia/restaurant/pkg/cart"
	"github.com/panaghia/restaurant/pkg/checkout"
	"github.com/panaghia/restaurant/pkg/transport"
)

func newCartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Coșul de cumpărături"}

	// mutate applies a cart change, saves it and prints the result.
	mutate := func(cmd *cobra.Command, change func() cart.Snapshot) error {
		snap := change()
		if err := app.saveCart(cmd.Context()); err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), snap, transport.Pickup)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Afișează coșul",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCart(cmd.OutOrStdout(), app.Cart.Snapshot(), transport.Pickup)
		},
	})

	var qty int
	add := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Adaugă un preparat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if qty < 1 {
				return fmt.Errorf("--qty must be at least 1")
			}
			it, err := app.API.MenuItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !it.IsAvailable {
				return fmt.Errorf("%s nu este disponibil momentan", it.Name)
			}
			return mutate(cmd, func() cart.Snapshot {
				var snap cart.Snapshot
				for range qty {
					snap = app.Cart.Add(cart.Item{ID: it.ID, Name: it.Name, Price: it.Price, Image: it.Image})
				}
				return snap
			})
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "cantitatea")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "set <item-id> <cantitate>",
		Short: "Setează cantitatea; 0 scoate preparatul",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return mutate(cmd, func() cart.Snapshot { return app.Cart.UpdateQuantity(args[0], n) })
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <item-id>",
		Short: "Scoate un preparat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, func() cart.Snapshot { return app.Cart.Remove(args[0]) })
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Golește coșul",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mutate(cmd, app.Cart.Clear)
		},
	})

	return cmd
}

func printCart(w io.Writer, snap cart.Snapshot, orderType transport.OrderType) error {
	if snap.IsEmpty() {
		_, err := fmt.Fprintln(w, "Coșul este gol.")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tPREPARAT\tCANT.\tTOTAL")
	for _, l := range snap.Lines() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ID, l.Name, l.Quantity, lei(l.Total()))
	}
	t := checkout.ComputeTotals(snap, orderType)
	fmt.Fprintf(tw, "\t\tSubtotal (%d)\t%s\n", snap.ItemCount(), lei(t.Subtotal))
	if orderType == transport.Delivery {
		fmt.Fprintf(tw, "\t\tLivrare\t%s\n", lei(t.DeliveryFee))
	}
	fmt.Fprintf(tw, "\t\tTotal\t%s\n", lei(t.Total))
	return tw.Flush()
}
