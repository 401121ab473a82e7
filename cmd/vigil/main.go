package main

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/vigilmap/vigil/internal/app"
	"github.com/vigilmap/vigil/internal/config"
	"github.com/vigilmap/vigil/internal/logger"
	"github.com/vigilmap/vigil/internal/pins"
	"github.com/vigilmap/vigil/internal/requester"
	"github.com/vigilmap/vigil/internal/session"
	"github.com/vigilmap/vigil/internal/store"
	"github.com/vigilmap/vigil/internal/viewport"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "A client for the community pin map",
	Long: `Vigil is a command line client for a community geo-annotation service.
It lets you browse map pins, sign in, report new pins and confirm reports
from other users.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newMapCmd(),
		newPinsCmd(),
		newConfirmCmd(),
	)
}

// ptermNotifier surfaces user-visible notices on the terminal.
type ptermNotifier struct{}

func (ptermNotifier) Notify(msg string) {
	pterm.Warning.Println(msg)
}

// withApp loads configuration, assembles the dependency graph and hands a
// ready client application to the command body.
func withApp(fn func(ctx context.Context, cfg *config.Config, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var a *app.App
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			fx.Annotate(
				func() ptermNotifier { return ptermNotifier{} },
				fx.As(new(pins.Notifier)),
			),
		),
		store.Module,
		requester.Module,
		session.Module,
		pins.Module,
		viewport.Module,
		app.Module,
		fx.Populate(&a),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	return fn(context.Background(), cfg, a)
}
