package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind     string
	port     int
	password string
	repo     string
	rounds   int
	tlsCert  string
	tlsKey   string
	profile  bool
	verbose  bool
	version  bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.rounds < 1 || c.rounds > 10 {
		return fmt.Errorf("invalid round count (must be between 1-10 inclusive): %d", c.rounds)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// joinLink is the shareable invite clients paste into their own process.
func (c *Config) joinLink(host string) string {
	return fmt.Sprintf("gitgame://%s:%d/%s", host, c.port, c.password)
}

var (
	passwordAdjectives = []string{
		"happy", "brave", "clever", "mighty", "nimble",
		"swift", "epic", "cosmic", "golden", "hidden",
	}
	passwordNouns = []string{
		"octopus", "wizard", "rocket", "falcon", "panda",
		"commit", "branch", "kraken", "badger", "pixel",
	}
)

// generatePassword builds a memorable session password like "epic-wizard-42".
func generatePassword() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return passwordAdjectives[rng.Intn(len(passwordAdjectives))] +
		"-" + passwordNouns[rng.Intn(len(passwordNouns))] +
		"-" + strconv.Itoa(rng.Intn(90)+10)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GITGAMESHOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "gitgameshow",
		Short:         "Host a multiplayer trivia game built from your git repository's history.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			if cfg.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			if cfg.password == "" {
				cfg.password = generatePassword()
			}
			return Serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GITGAMESHOW_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 3217, "port to listen on (env: GITGAMESHOW_PORT)")
	fs.StringVar(&cfg.password, "password", "", "session password, generated when empty (env: GITGAMESHOW_PASSWORD)")
	fs.StringVar(&cfg.repo, "repo", ".", "path to the git repository to quiz on (env: GITGAMESHOW_REPO)")
	fs.IntVarP(&cfg.rounds, "rounds", "r", 3, "number of rounds to play, 1-10 (env: GITGAMESHOW_ROUNDS)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: GITGAMESHOW_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: GITGAMESHOW_TLS_KEY)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: GITGAMESHOW_PROFILE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: GITGAMESHOW_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: GITGAMESHOW_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("gitgameshow v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
