package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/panaghia/restaurant/pkg/apiclient"
	"github.com/panaghia/restaurant/pkg/checkout"
	"github.com/panaghia/restaurant/pkg/session"
)

var ErrLoginRequired = errors.New("autentificare necesară: rulați `panaghia admin login`")

// userError carries the line shown to the user apart from the cause, which
// only goes to the log.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// NewRootCmd builds the command tree over app. The session and cart are
// loaded before any subcommand runs.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "panaghia",
		Short:         "Restaurantul Panaghia din terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd.Context())
		},
	}

	root.AddCommand(
		newMenuCmd(app),
		newCartCmd(app),
		newCheckoutCmd(app),
		newOrderCmd(app),
		newReviewCmd(app),
		newConsentCmd(app),
		newAdminCmd(app),
		&cobra.Command{
			Use:   "health",
			Short: "Verifică dacă serverul răspunde",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := app.API.Health(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Serverul este disponibil.")
				return nil
			},
		},
	)
	return root
}

// Describe turns a command error into the line shown to the user.
func Describe(err error) string {
	var uerr *userError
	if errors.As(err, &uerr) {
		return uerr.msg
	}
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "Completați câmpurile obligatorii:"
		for _, f := range verr.Fields {
			msg += "\n  " + f.Message
		}
		return msg
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Coșul este gol."
	case errors.Is(err, ErrLoginRequired):
		return err.Error()
	case errors.Is(err, session.ErrNoRefreshToken):
		return apiclient.UserMessage(apiclient.ErrSessionExpired)
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) || errors.Is(err, apiclient.ErrSessionExpired) || errors.Is(err, apiclient.ErrNotAuthenticated) {
		return apiclient.UserMessage(err)
	}
	return err.Error()
}

// guarded runs fn only for an authenticated session.
func (a *App) guarded(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		switch a.Session.Guard() {
		case session.Allow:
			return fn(cmd, args)
		case session.RedirectLogin:
			return ErrLoginRequired
		}
		return fmt.Errorf("session not restored yet")
	}
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func lei(d decimal.Decimal) string {
	return d.StringFixed(2) + " lei"
}
