package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/avierno/envauth/internal/app"
	"github.com/avierno/envauth/internal/identity"
	"github.com/avierno/envauth/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "envauth",
		Usage: "Multi-environment token and credential manager",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json|otlp|otlp-grpc|stdout)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "secrets--storage",
				Usage: "secret storage backend (keyring|file|memory)",
				Value: string(app.DefaultConfigSecretStorage),
			},
		},
		Commands: []*cli.Command{
			tokenCommand(),
			secretCommand(),
			envCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// newApp loads config, instruments logging and wires the application with
// terminal-facing prompt mechanisms.
func newApp(cmd *cli.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before creating app
	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	application, err := app.New(cfg,
		app.WithProviderOptions(
			identity.WithDevicePrompt(func(ctx context.Context, userCode, verificationURI string) error {
				fmt.Fprintf(os.Stderr, "To sign in, open %s and enter the code %s\n", verificationURI, userCode)
				return nil
			}),
			identity.WithOpenURL(func(ctx context.Context, url string) error {
				fmt.Fprintf(os.Stderr, "To sign in, open the following URL in your browser:\n%s\n", url)
				return nil
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return application, nil
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "acquire and print an access token for an environment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Usage:    "environment id",
				Required: true,
			},
		},
		Action: tokenAction,
	}
}

func tokenAction(ctx context.Context, cmd *cli.Command) error {
	application, err := newApp(cmd)
	if err != nil {
		return err
	}

	env, err := application.Environment(cmd.String("env"))
	if err != nil {
		return err
	}

	token, err := application.Coordinator().Token(ctx, env)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func secretCommand() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "manage stored secret material",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "store the client secret or password for an environment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "env",
						Usage:    "environment id",
						Required: true,
					},
				},
				Action: secretSetAction,
			},
		},
	}
}

func secretSetAction(ctx context.Context, cmd *cli.Command) error {
	application, err := newApp(cmd)
	if err != nil {
		return err
	}

	env, err := application.Environment(cmd.String("env"))
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, "Secret: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading secret: %w", err)
	}

	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return fmt.Errorf("secret cannot be empty")
	}

	if err := application.Coordinator().StoreSecret(ctx, env, secret); err != nil {
		return fmt.Errorf("storing secret: %w", err)
	}

	slog.InfoContext(ctx, "secret stored", "environment", env.ID)
	return nil
}

func envCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "manage environments",
		Commands: []*cli.Command{
			{
				Name:  "remove",
				Usage: "drop an environment's cached token and stored secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "env",
						Usage:    "environment id",
						Required: true,
					},
				},
				Action: envRemoveAction,
			},
		},
	}
}

func envRemoveAction(ctx context.Context, cmd *cli.Command) error {
	application, err := newApp(cmd)
	if err != nil {
		return err
	}

	env, err := application.Environment(cmd.String("env"))
	if err != nil {
		return err
	}

	if err := application.Coordinator().RemoveEnvironment(ctx, env); err != nil {
		return fmt.Errorf("removing environment: %w", err)
	}

	slog.InfoContext(ctx, "environment credentials removed", "environment", env.ID)
	return nil
}
