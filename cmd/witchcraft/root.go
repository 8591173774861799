package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"witchcraft/internal/config"
	"witchcraft/internal/dispatch"
	"witchcraft/internal/ipc"
	"witchcraft/internal/logging"
	"witchcraft/internal/playback"
)

type application struct {
	stdout io.Writer
	stderr io.Writer

	// resolver and execer are replaced in tests.
	resolver ipc.Resolver
	execer   playback.Execer

	code int
}

func newApplication(stdout, stderr io.Writer) *application {
	return &application{stdout: stdout, stderr: stderr, execer: playback.SystemExec}
}

// execute runs one invocation. cobra routes its hidden completion request
// commands even with flag parsing disabled, so those words bypass it and go
// to the server like any other argument.
func execute(ctx context.Context, app *application, args []string) error {
	args = append([]string{}, args...)
	if len(args) > 0 && (args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd) {
		app.code = app.run(ctx, args)
		return nil
	}
	cmd := newRootCommand(app)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "witchcraft [command] [args...]",
		Short: "Send a command to the witchcraft music server",
		Long: `witchcraft forwards its arguments to the witchcraft server listening on
<music home>/.cli-server.sock and relays the reply. The music home is
$WITCHCRAFT_MUSIC_HOME, else $OVERRIDE_ROOT, else /var/lib/witchcraft.

"witchcraft play <query>" starts the configured player on the matching tracks.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.code = app.run(cmd.Context(), args)
			return nil
		},
	}
}

func (a *application) run(ctx context.Context, args []string) int {
	cfg, cfgPath, cfgExists, err := config.Load("")
	if err != nil {
		fmt.Fprintf(a.stderr, "witchcraft: load config: %v\n", err)
		return dispatch.ExitLocalFailure
	}
	logger, err := logging.NewFromConfigWriter(cfg, a.stderr)
	if err != nil {
		fmt.Fprintf(a.stderr, "witchcraft: init logger: %v\n", err)
		return dispatch.ExitLocalFailure
	}
	logger = logging.WithInvocationID(logger, uuid.NewString())
	logger.Debug("client starting",
		logging.String("config", cfgPath),
		logging.Bool("config_exists", cfgExists),
		logging.String("music_home", a.resolver.MusicHome()))

	handoff := playback.NewHandoff(playback.FromConfig(cfg.Player), logger)
	handoff.Execer = a.execer

	client := &dispatch.Client{
		Resolver: a.resolver,
		Handoff:  handoff,
		Stdout:   a.stdout,
		Stderr:   a.stderr,
		Logger:   logger,
	}
	return client.Run(ctx, args)
}
