// Command myday is the terminal client for the task server: sign-in and
// account commands, task commands and a full-screen UI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bijaykarki4742/summer-class-web/client/notes"
	"github.com/bijaykarki4742/summer-class-web/client/session"
	"github.com/bijaykarki4742/summer-class-web/client/taskapi"
	"github.com/bijaykarki4742/summer-class-web/client/tasklist"
	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/bijaykarki4742/summer-class-web/identity"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath  string
	apiURL      string
	sessionFile string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "myday",
		Short:         "MyDay - personal tasks from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "TOML config file (default $MYDAY_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Task server URL (default $MYDAY_API_URL or "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&flags.sessionFile, "session-file", "", "Where the sign-in session is kept")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log client errors to stderr")

	rootCmd.AddCommand(loginCmd(flags))
	rootCmd.AddCommand(signupCmd(flags))
	rootCmd.AddCommand(logoutCmd(flags))
	rootCmd.AddCommand(whoamiCmd(flags))
	rootCmd.AddCommand(forgotPasswordCmd(flags))
	rootCmd.AddCommand(setPasswordCmd(flags))
	rootCmd.AddCommand(tasksCmd(flags))
	rootCmd.AddCommand(uiCmd(flags))

	return rootCmd
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	auth    *identity.Auth
	session *session.Controller
	tasks   *tasklist.Controller
	notes   *notes.Board
	out     io.Writer
	in      *bufio.Reader
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}

	path := flags.sessionFile
	if path == "" {
		if path, err = identity.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}

	level := slog.LevelError
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	auth := identity.NewAuth(
		identity.NewClientFromConfig(cfg),
		identity.NewFileStore(path),
		identity.WithLogger(logger),
	)
	api := taskapi.New(cfg.APIURL, taskapi.WithTokenSource(func(ctx context.Context) (string, error) {
		if !auth.Configured() {
			return "", nil
		}
		token, err := auth.AccessToken(ctx)
		if errors.Is(err, identity.ErrNoSession) {
			return "", nil
		}
		return token, err
	}))

	return &app{
		cfg:     cfg,
		auth:    auth,
		session: session.New(auth, session.WithLogger(logger), session.WithSiteURL(cfg.SiteURL)),
		tasks:   tasklist.New(api, tasklist.WithLogger(logger)),
		notes:   notes.NewBoard(),
		out:     cmd.OutOrStdout(),
		in:      bufio.NewReader(cmd.InOrStdin()),
	}, nil
}

// run builds the app, starts the session controller and hands both to fn.
func run(flags *rootFlags, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, flags)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		a.session.Start(ctx)
		defer a.session.Close()
		return fn(ctx, a, args)
	}
}

// prompt asks for a value unless one was given on the command line.
func (a *app) prompt(label, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireSignIn enforces the session guard when an identity provider is in use.
func (a *app) requireSignIn() error {
	if !a.auth.Configured() {
		return nil
	}
	if err := a.session.Guard(); err != nil {
		return fmt.Errorf("%w: run `myday login` first", err)
	}
	return nil
}

// report prints a Result and turns a failure into an error.
func (a *app) report(res session.Result) error {
	if !res.Success {
		if res.Message != "" {
			fmt.Fprintln(a.out, res.Message)
		}
		return errors.New(res.Error)
	}
	if res.Message != "" {
		fmt.Fprintln(a.out, res.Message)
	}
	return nil
}
