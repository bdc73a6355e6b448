package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sakif/samewave/internal/apiclient"
	"github.com/sakif/samewave/internal/config"
	"github.com/sakif/samewave/internal/identity"
	"github.com/sakif/samewave/internal/localstore"
	"github.com/sakif/samewave/internal/syncclient"
)

// Version is set at build time.
var Version = "dev"

// app holds what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	out     io.Writer
	v       *viper.Viper
	cfgFile string

	cfg     *config.Config
	logger  *slog.Logger
	cache   localstore.Store
	api     *apiclient.Client
	sync    *syncclient.Client
	session *identity.Session
	closers []func() error
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, v: config.New()}

	root := &cobra.Command{
		Use:   "samewave",
		Short: "Find tracks that feel the same",
		Long: `samewave opens a thread on a seed track and collects suggestions of
tracks with the same vibe. Suggestions are ranked by upvotes.

When the entity store cannot be reached, threads and suggestions are read
from the local cache and new ones are created locally.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.open(cmd.Context()) },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", os.Getenv("SAMEWAVE_CONFIG"), "config file (default is ./configs/samewave.yaml)")
	root.PersistentFlags().String("api-url", "", "entity store base URL")
	root.PersistentFlags().String("state", "", "local state file")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = a.v.BindPFlag("client.api_url", root.PersistentFlags().Lookup("api-url"))
	_ = a.v.BindPFlag("client.state_path", root.PersistentFlags().Lookup("state"))
	_ = a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(
		newSearchCmd(a),
		newThreadsCmd(a),
		newThreadCmd(a),
		newSuggestCmd(a),
		newUpvoteCmd(a),
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
	)
	return root
}

// open loads configuration, the local cache, the API client and the stored
// session. It does not contact the store for data; commands that need the
// working set call load.
func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	switch cfg.Client.Cache {
	case "redis":
		rs, err := localstore.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		a.cache = rs
		a.closers = append(a.closers, rs.Close)
	default:
		fs, err := localstore.NewFileStore(cfg.Client.StatePath, a.logger)
		if err != nil {
			return err
		}
		a.cache = fs
	}

	a.api = apiclient.New(cfg.Client.APIURL, &http.Client{Timeout: cfg.Client.Timeout})
	a.sync = syncclient.New(a.api, a.cache, a.logger)
	a.session = identity.NewSession(a.cache, a.api, a.logger)

	if err := a.session.Restore(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	return nil
}

// load fills the working set and tells the user when it came from the cache.
func (a *app) load(ctx context.Context) error {
	if err := a.sync.Load(ctx); err != nil {
		return err
	}
	if !a.sync.Online() {
		fmt.Fprintln(a.out, "(offline: showing cached data)")
	}
	return nil
}

func (a *app) close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
