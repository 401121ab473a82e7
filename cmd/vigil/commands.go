package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vigilmap/vigil/internal/app"
	"github.com/vigilmap/vigil/internal/config"
	"github.com/vigilmap/vigil/internal/geo"
	"github.com/vigilmap/vigil/internal/pins"
)

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				sess, err := a.Login(ctx, username, password)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Signed in as %s (user id %d)", sess.DisplayName, sess.UserID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				user, err := a.Register(ctx, username, password)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Registered %s (id %d). Sign in with `vigil login`.", user.Username, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				a.Logout(ctx)
				pterm.Success.Println("Signed out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				sess := a.Session().Current()
				if sess == nil {
					pterm.Info.Println("Not signed in. Browsing as a guest.")
					return nil
				}
				pterm.Info.Printfln("Signed in as %s (user id %d)", sess.DisplayName, sess.UserID)
				return nil
			})
		},
	}
}

func newMapCmd() *cobra.Command {
	var span float64
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Load the pins around the configured map center",
		Long: `Loads the pins visible in a viewport centered on the configured map
position, falling back to the full list when the area is empty, and prints
them with their confirmation tier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				m := &staticMap{bounds: geo.Bounds{
					West:  cfg.Map.CenterLng - span,
					South: cfg.Map.CenterLat - span,
					East:  cfg.Map.CenterLng + span,
					North: cfg.Map.CenterLat + span,
				}}
				a.AttachMap(ctx, m)

				list := a.Store().All()
				if len(list) == 0 {
					pterm.Info.Println("No pins to show.")
					return nil
				}
				if m.fitCount > 0 {
					b := m.Bounds()
					pterm.Info.Printfln("Viewport fitted to %g,%g,%g,%g", b.West, b.South, b.East, b.North)
				}
				printPins(list)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&span, "span", 0.25, "Half-size of the viewport in degrees")
	return cmd
}

func newPinsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pins",
		Short: "List and create pins",
	}
	cmd.AddCommand(newPinsListCmd(), newPinsAddCmd())
	return cmd
}

func newPinsListCmd() *cobra.Command {
	var search, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pins visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				list, err := a.Pins().List(ctx, a.Session().IsAuthenticated(), pins.ListOptions{
					Search: search,
					Status: status,
				})
				if err != nil {
					return err
				}
				if len(list) == 0 {
					pterm.Info.Println("No pins found.")
					return nil
				}
				printPins(list)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by title or description")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	return cmd
}

func newPinsAddCmd() *cobra.Command {
	var lat, lng float64
	var title, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Report a new pin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				if !a.Session().IsAuthenticated() {
					return fmt.Errorf("you must be signed in to add pins")
				}
				a.HandleMapClick(lat, lng)
				pin, err := a.SubmitDraft(ctx, title, description)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Pin %d created at %g,%g (pending admin approval)", pin.ID, pin.Lat, pin.Lng)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the pin")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the pin")
	cmd.Flags().StringVar(&title, "title", "", "Pin title")
	cmd.Flags().StringVar(&description, "description", "", "Pin description")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func newConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <pin-id>",
		Short: "Toggle your confirmation on a pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pin id %q", args[0])
			}
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				list, err := a.Pins().List(ctx, a.Session().IsAuthenticated(), pins.ListOptions{})
				if err != nil {
					return err
				}
				a.Store().ReplaceAll(list)

				if err := a.ToggleConfirmation(ctx, id); err != nil {
					return err
				}
				if pin, ok := a.Store().Get(id); ok {
					pterm.Success.Printfln("Pin %d: %d confirmations (%s)",
						pin.ID, pin.ConfirmationsCount, pin.Color)
				}
				return nil
			})
		},
	}
}

// staticMap is the CLI's stand-in for the map widget: a fixed viewport
// that records camera-fit requests.
type staticMap struct {
	bounds   geo.Bounds
	fitCount int
}

func (m *staticMap) Bounds() geo.Bounds { return m.bounds }

func (m *staticMap) FitBounds(b geo.Bounds) {
	m.bounds = b
	m.fitCount++
}

func (m *staticMap) OnMoveEnd(fn func()) (cancel func()) {
	// A static viewport never settles again after the initial load.
	return func() {}
}

func printPins(list []pins.Pin) {
	for _, p := range list {
		marker := tierPrinter(p.Color).Sprint("●")
		confirmed := ""
		if p.UserConfirmed {
			confirmed = " (confirmed by you)"
		}
		title := p.Title
		if title == "" {
			title = "(untitled)"
		}
		pterm.Printfln("%s #%d %s at %g,%g [%s] %d confirmations%s",
			marker, p.ID, title, p.Lat, p.Lng, p.Status, p.ConfirmationsCount, confirmed)
	}
}

func tierPrinter(tier pins.ColorTier) pterm.Color {
	switch tier {
	case pins.TierBlue:
		return pterm.FgBlue
	case pins.TierYellow:
		return pterm.FgYellow
	case pins.TierOrange:
		return pterm.FgLightRed
	case pins.TierRed:
		return pterm.FgRed
	default:
		return pterm.FgGray
	}
}
