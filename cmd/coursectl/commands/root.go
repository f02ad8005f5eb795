// Package commands implements coursectl, a command line client that keeps a
// course backend session in a cookie file between runs.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/course-session-gateway/auth"
	"github.com/jrsteele09/course-session-gateway/cookies"
	"github.com/jrsteele09/course-session-gateway/courses"
	"github.com/jrsteele09/course-session-gateway/internal/config"
	"github.com/jrsteele09/course-session-gateway/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cliConfig reads the backend settings from the environment, with the
// --api-url flag taking precedence.
type cliConfig struct {
	config.Backend
	apiURL string
}

var _ auth.Config = cliConfig{}

func (c cliConfig) GetAPIURL() string {
	if c.apiURL != "" {
		return c.apiURL
	}
	return c.Backend.GetAPIURL()
}

func (cliConfig) GetSecureCookies() bool {
	return false
}

// app is the state shared by every subcommand for one invocation
type app struct {
	cookiePath string
	apiURL     string
	verbose    bool

	store   *cookies.FileStore
	auth    *auth.Service
	catalog *courses.Catalog
}

func defaultCookiePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".coursectl-cookies.json"
	}
	return filepath.Join(home, ".coursectl", "cookies.json")
}

// NewRootCmd builds the coursectl command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "coursectl",
		Short:         "Command line client for the course backend",
		Long:          "Signs in to the course backend and browses the catalogue, keeping the session cookies in a local file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cookiePath, "cookies", defaultCookiePath(), "cookie file holding the session")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "course backend base URL (defaults to $API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log backend calls")

	rootCmd.AddCommand(newSignInCmd(a))
	rootCmd.AddCommand(newSignUpCmd(a))
	rootCmd.AddCommand(newSignOutCmd(a))
	rootCmd.AddCommand(newSessionCmd(a))
	rootCmd.AddCommand(newCategoriesCmd(a))
	rootCmd.AddCommand(newCoursesCmd(a))
	rootCmd.AddCommand(newCallCmd(a))

	return rootCmd
}

func (a *app) open() error {
	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()

	store, err := cookies.OpenFileStore(a.cookiePath, time.Now())
	if err != nil {
		return fmt.Errorf("failed to open cookie file: %w", err)
	}

	service, err := auth.NewService(cliConfig{apiURL: a.apiURL}, sessions.NewInMemoryRepo())
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	a.store = store
	a.auth = service
	a.catalog = courses.NewCatalog(service.Client())
	return nil
}

// run saves the cookie file after fn, including when fn fails after a sign-out.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if saveErr := a.save(); saveErr != nil && err == nil {
				err = saveErr
			}
		}()
		return fn(cmd, args)
	}
}

func (a *app) save() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Save(); err != nil {
		return fmt.Errorf("failed to save cookie file: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
