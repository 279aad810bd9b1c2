package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/panaghia/restaurant/pkg/transport"
)

// Update commands send only the flags that were given on the command line;
// the server leaves every other field as it is.

func changedString(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}

func changedBool(fs *pflag.FlagSet, name string) *bool {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetBool(name)
	return &v
}

func changedInt(fs *pflag.FlagSet, name string) *int {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetInt(name)
	return &v
}

func changedPrice(fs *pflag.FlagSet, name string) (*decimal.Decimal, error) {
	raw := changedString(fs, name)
	if raw == nil {
		return nil, nil
	}
	p, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fmt.Errorf("preț invalid %q", *raw)
	}
	return &p, nil
}

func newAdminMenuCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "menu", Short: "Administrarea meniului"}
	cmd.AddCommand(newAdminCategoryCmd(app), newAdminItemCmd(app), newAdminDailyCmd(app))
	return cmd
}

func categoryFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "numele categoriei")
	fs.String("slug", "", "identificator în URL")
	fs.String("icon", "", "iconiță")
	fs.Int("order", 0, "poziția în meniu")
	fs.Bool("active", true, "vizibilă pentru clienți")
}

func categoryInput(fs *pflag.FlagSet) transport.CategoryInput {
	return transport.CategoryInput{
		Name:     changedString(fs, "name"),
		Slug:     changedString(fs, "slug"),
		Icon:     changedString(fs, "icon"),
		Order:    changedInt(fs, "order"),
		IsActive: changedBool(fs, "active"),
	}
}

func newAdminCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "categories", Short: "Categoriile meniului"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Toate categoriile",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			cats, err := app.API.AdminCategories(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNUME\tSLUG\tORDINE\tACTIVĂ")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Slug, c.Order, yesNo(c.IsActive))
			}
			return tw.Flush()
		}),
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Adaugă o categorie",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			c, err := app.API.CreateCategory(cmd.Context(), categoryInput(cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categorie creată: %s (%s)\n", c.Name, c.ID)
			return nil
		}),
	}
	categoryFlags(add.Flags())
	_ = add.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Modifică o categorie",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			c, err := app.API.UpdateCategory(cmd.Context(), args[0], categoryInput(cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categorie actualizată: %s\n", c.Name)
			return nil
		}),
	}
	categoryFlags(update.Flags())

	del := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Șterge o categorie",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			if err := app.API.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Categorie ștearsă.")
			return nil
		}),
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}

func itemFlags(fs *pflag.FlagSet) {
	fs.String("category", "", "ID-ul categoriei")
	fs.String("name", "", "numele preparatului")
	fs.String("description", "", "descriere")
	fs.String("price", "", "preț în lei, ex. 24.50")
	fs.String("image", "", "URL imagine")
	fs.Bool("popular", false, "marcat ca popular")
	fs.Bool("available", true, "disponibil la comandă")
}

func itemInput(fs *pflag.FlagSet) (transport.MenuItemInput, error) {
	price, err := changedPrice(fs, "price")
	if err != nil {
		return transport.MenuItemInput{}, err
	}
	return transport.MenuItemInput{
		CategoryID:  changedString(fs, "category"),
		Name:        changedString(fs, "name"),
		Description: changedString(fs, "description"),
		Price:       price,
		Image:       changedString(fs, "image"),
		IsPopular:   changedBool(fs, "popular"),
		IsAvailable: changedBool(fs, "available"),
	}, nil
}

func newAdminItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "items", Short: "Preparatele meniului"}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "Toate preparatele",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			items, err := app.API.AdminItems(cmd.Context(), category)
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNUME\tPREȚ\tDISPONIBIL")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, lei(it.Price), yesNo(it.IsAvailable))
			}
			return tw.Flush()
		}),
	}
	list.Flags().StringVar(&category, "category", "", "doar din categoria dată")

	add := &cobra.Command{
		Use:   "add",
		Short: "Adaugă un preparat",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			in, err := itemInput(cmd.Flags())
			if err != nil {
				return err
			}
			it, err := app.API.CreateMenuItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preparat creat: %s (%s) %s\n", it.Name, it.ID, lei(it.Price))
			return nil
		}),
	}
	itemFlags(add.Flags())
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("price")

	update := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Modifică un preparat",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			in, err := itemInput(cmd.Flags())
			if err != nil {
				return err
			}
			it, err := app.API.UpdateMenuItem(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preparat actualizat: %s %s\n", it.Name, lei(it.Price))
			return nil
		}),
	}
	itemFlags(update.Flags())

	del := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Șterge un preparat",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			if err := app.API.DeleteMenuItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Preparat șters.")
			return nil
		}),
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}

func dailyFlags(fs *pflag.FlagSet) {
	fs.String("day", "", "ziua săptămânii, ex. luni")
	fs.String("soup", "", "ciorba zilei")
	fs.String("main", "", "felul principal")
	fs.Bool("active", true, "afișat clienților")
}

func dailyInput(fs *pflag.FlagSet) transport.DailyMenuInput {
	return transport.DailyMenuInput{
		Day:      changedString(fs, "day"),
		Soup:     changedString(fs, "soup"),
		Main:     changedString(fs, "main"),
		IsActive: changedBool(fs, "active"),
	}
}

func newAdminDailyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "daily", Short: "Meniul zilei"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Meniurile zilei active, cu ID",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			menus, err := app.API.DailyMenu(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tZI\tCIORBĂ\tFEL PRINCIPAL")
			for _, m := range menus {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Day, m.Soup, m.Main)
			}
			return tw.Flush()
		}),
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Adaugă meniul unei zile",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			m, err := app.API.CreateDailyMenu(cmd.Context(), dailyInput(cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meniu creat pentru %s (%s)\n", m.Day, m.ID)
			return nil
		}),
	}
	dailyFlags(add.Flags())
	_ = add.MarkFlagRequired("day")

	update := &cobra.Command{
		Use:   "update <daily-id>",
		Short: "Modifică meniul unei zile",
		Args:  cobra.ExactArgs(1),
		RunE: app.guarded(func(cmd *cobra.Command, args []string) error {
			m, err := app.API.UpdateDailyMenu(cmd.Context(), args[0], dailyInput(cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meniu actualizat pentru %s: %s, %s\n", m.Day, m.Soup, m.Main)
			return nil
		}),
	}
	dailyFlags(update.Flags())

	cmd.AddCommand(list, add, update)
	return cmd
}

func newAdminSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Datele restaurantului"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Afișează datele restaurantului",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			info, err := app.API.RestaurantInfo(cmd.Context())
			if err != nil {
				return err
			}
			printRestaurantInfo(cmd.OutOrStdout(), info)
			return nil
		}),
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Modifică datele restaurantului",
		Args:  cobra.NoArgs,
		RunE: app.guarded(func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			in := transport.RestaurantInfoInput{
				Name:         changedString(fs, "name"),
				Tagline:      changedString(fs, "tagline"),
				Phone:        changedString(fs, "phone"),
				Email:        changedString(fs, "email"),
				Address:      changedString(fs, "address"),
				HeroTitle:    changedString(fs, "hero-title"),
				HeroSubtitle: changedString(fs, "hero-subtitle"),
				HeroImage:    changedString(fs, "hero-image"),
			}
			weekdays, weekend := changedString(fs, "weekdays"), changedString(fs, "weekend")
			if weekdays != nil || weekend != nil {
				// The schedule is replaced as a whole.
				cur, err := app.API.RestaurantInfo(cmd.Context())
				if err != nil {
					return err
				}
				s := cur.Schedule
				if weekdays != nil {
					s.Weekdays = *weekdays
				}
				if weekend != nil {
					s.Weekend = *weekend
				}
				in.Schedule = &s
			}
			if in == (transport.RestaurantInfoInput{}) {
				return errors.New("nicio modificare: folosiți cel puțin un flag")
			}
			info, err := app.API.UpdateRestaurantInfo(cmd.Context(), in)
			if err != nil {
				return err
			}
			printRestaurantInfo(cmd.OutOrStdout(), info)
			return nil
		}),
	}
	f := update.Flags()
	f.String("name", "", "numele restaurantului")
	f.String("tagline", "", "sloganul")
	f.String("phone", "", "telefon")
	f.String("email", "", "email de contact")
	f.String("address", "", "adresa")
	f.String("weekdays", "", "program luni-vineri")
	f.String("weekend", "", "program sâmbătă-duminică")
	f.String("hero-title", "", "titlul paginii principale")
	f.String("hero-subtitle", "", "subtitlul paginii principale")
	f.String("hero-image", "", "imaginea paginii principale")

	cmd.AddCommand(show, update)
	return cmd
}

func newPasswordResetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "password-reset", Short: "Resetarea parolei uitate"}

	var email string
	request := &cobra.Command{
		Use:   "request",
		Short: "Cere un cod de resetare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.API.RequestPasswordReset(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dacă adresa există, codul de resetare a fost trimis.")
			return nil
		},
	}
	request.Flags().StringVar(&email, "email", "", "adresa contului")
	_ = request.MarkFlagRequired("email")

	var token, password string
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Setează parola nouă cu codul primit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.API.ConfirmPasswordReset(cmd.Context(), token, password); err != nil {
				return err
			}
			// The server revoked every session of the account.
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Parola a fost resetată. Autentificați-vă cu parola nouă.")
			return nil
		},
	}
	confirm.Flags().StringVar(&token, "token", "", "codul primit")
	confirm.Flags().StringVar(&password, "password", "", "parola nouă")
	_ = confirm.MarkFlagRequired("token")
	_ = confirm.MarkFlagRequired("password")

	cmd.AddCommand(request, confirm)
	return cmd
}

func printRestaurantInfo(w io.Writer, info *transport.RestaurantInfo) {
	fmt.Fprintf(w, "%s\n", info.Name)
	if info.Tagline != "" {
		fmt.Fprintf(w, "%s\n", info.Tagline)
	}
	fmt.Fprintf(w, "Telefon: %s\nEmail: %s\nAdresă: %s\n", info.Phone, info.Email, info.Address)
	fmt.Fprintf(w, "Program: L-V %s, S-D %s\n", info.Schedule.Weekdays, info.Schedule.Weekend)
	fmt.Fprintf(w, "Rating: %.1f (%d recenzii)\n", info.Rating, info.ReviewCount)
}

func yesNo(b bool) string {
	if b {
		return "da"
	}
	return "nu"
}
