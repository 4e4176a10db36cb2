package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tasky/internal/logger"
	"tasky/internal/taskcache"
)

const defaultAPIURL = "http://localhost:8080/api"

// app carries what the commands share. newStore is replaced in tests.
type app struct {
	v        *viper.Viper
	out      io.Writer
	now      func() time.Time
	newStore func(a *app) (*taskcache.Store, error)
	log      *zap.Logger
}

func newApp(out io.Writer) *app {
	v := viper.New()
	v.SetEnvPrefix("TASKY")
	v.AutomaticEnv()
	v.SetDefault("api_url", defaultAPIURL)

	return &app{
		v:        v,
		out:      out,
		now:      time.Now,
		newStore: httpStore,
		log:      zap.NewNop(),
	}
}

// httpStore builds a store backed by the API and the on-disk mirror.
func httpStore(a *app) (*taskcache.Store, error) {
	token := a.v.GetString("token")
	if token == "" {
		return nil, fmt.Errorf("no session token: pass --token or set TASKY_TOKEN")
	}

	path := a.v.GetString("cache_file")
	if path == "" {
		var err error
		if path, err = taskcache.DefaultMirrorPath(); err != nil {
			return nil, fmt.Errorf("locate cache dir: %w", err)
		}
	}

	remote := taskcache.NewHTTPRemote(a.v.GetString("api_url"), token, nil)
	return taskcache.NewStore(remote, taskcache.NewFileMirror(path), a.log), nil
}

// location resolves --tz, defaulting to the local zone.
func (a *app) location() (*time.Location, error) {
	tz := a.v.GetString("tz")
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", tz)
	}
	return loc, nil
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasky",
		Short: "Manage your tasky tasks from the terminal",
		Long: `tasky lists, adds and removes tasks of the signed-in user and draws
them on a month calendar.

The task list is cached on disk. Changes show up in the cache right away and are
sent to the server; a failed change reloads the list from the server. Use
"tasky refresh" to pick up changes made elsewhere.
Sign in through the web app and pass the session token with --token or TASKY_TOKEN.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = logger.NewConsole(a.v.GetBool("verbose"))
		},
	}
	cmd.SetOut(a.out)

	flags := cmd.PersistentFlags()
	flags.String("api", defaultAPIURL, "Base URL of the tasky API")
	flags.String("token", "", "Session token")
	flags.String("cache-file", "", "Task cache file (default: user cache dir)")
	flags.String("tz", "", "Time zone used to place tasks on days (default: local)")
	flags.BoolP("verbose", "v", false, "Verbose logging")

	_ = a.v.BindPFlag("api_url", flags.Lookup("api"))
	_ = a.v.BindPFlag("token", flags.Lookup("token"))
	_ = a.v.BindPFlag("cache_file", flags.Lookup("cache-file"))
	_ = a.v.BindPFlag("tz", flags.Lookup("tz"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	cmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newRefreshCmd(a),
		newClearCmd(a),
		newCalendarCmd(a),
	)
	return cmd
}
