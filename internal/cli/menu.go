package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/panaghia/restaurant/pkg/transport"
)

func newMenuCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "menu", Short: "Meniul restaurantului"}

	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "Categoriile active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := app.API.Categories(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNUME\tSLUG")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s %s\t%s\n", c.ID, c.Icon, c.Name, c.Slug)
			}
			return tw.Flush()
		},
	})

	var (
		category string
		popular  bool
	)
	items := &cobra.Command{
		Use:   "items",
		Short: "Preparatele disponibile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app.API.MenuItems(cmd.Context(), category, popular)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), list)
		},
	}
	items.Flags().StringVar(&category, "category", "", "ID-ul categoriei")
	items.Flags().BoolVar(&popular, "popular", false, "doar preparatele populare")
	cmd.AddCommand(items)

	cmd.AddCommand(&cobra.Command{
		Use:   "daily [zi]",
		Short: "Meniul zilei",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var menus []transport.DailyMenu
			if len(args) == 1 {
				m, err := app.API.DailyMenuFor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				menus = []transport.DailyMenu{*m}
			} else {
				var err error
				if menus, err = app.API.DailyMenu(cmd.Context()); err != nil {
					return err
				}
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ZI\tCIORBĂ\tFEL PRINCIPAL")
			for _, m := range menus {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Day, m.Soup, m.Main)
			}
			return tw.Flush()
		},
	})

	var limit int
	search := &cobra.Command{
		Use:   "search <text>",
		Short: "Caută în meniu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.API.SearchMenu(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rezultate pentru %q\n", res.Total, res.Query)
			return printItems(cmd.OutOrStdout(), res.Items)
		},
	}
	search.Flags().IntVar(&limit, "limit", 0, "numărul maxim de rezultate")
	cmd.AddCommand(search)

	return cmd
}

func printItems(w io.Writer, items []transport.MenuItem) error {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNUME\tPREȚ")
	for _, it := range items {
		name := it.Name
		if it.IsPopular {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, name, lei(it.Price))
	}
	return tw.Flush()
}
