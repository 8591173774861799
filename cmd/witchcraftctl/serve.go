package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"witchcraft/internal/ipc"
	"witchcraft/internal/logging"
)

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a loopback stub server that echoes commands",
		Long: `serve listens on the client socket and answers every command with its
arguments joined by spaces. "play" is answered with one argument per line,
which the client treats as a track list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !logging.ValidLevel(opts.logLevel) {
				return fmt.Errorf("invalid --log-level %q", opts.logLevel)
			}
			path := strings.TrimSpace(opts.socket)
			if path == "" {
				resolved, err := ipc.ResolveSocketPath()
				if err != nil {
					return err
				}
				path = resolved
			}

			logger, err := logging.New(logging.Options{
				Level:       opts.logLevel,
				Format:      opts.logFormat,
				OutputPaths: opts.logOutputs,
				Development: opts.logSource,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var serverOpts []ipc.ServerOption
			if opts.permissions != 0 {
				serverOpts = append(serverOpts, ipc.WithSocketPermissions(os.FileMode(opts.permissions)))
			}
			srv, err := ipc.NewServer(ctx, path, ipc.EchoHandler(ipc.Status(opts.status)), logger, serverOpts...)
			if err != nil {
				return fmt.Errorf("start stub server: %w", err)
			}
			defer srv.Close()
			srv.Serve()

			fmt.Fprintf(cmd.OutOrStdout(), "Stub server listening on %s (status %d)\n", path, opts.status)
			<-ctx.Done()
			logger.Info("stub server shutting down", logging.String(logging.FieldSocket, path))
			return nil
		},
	}
	bindServeFlags(cmd.Flags(), opts)
	return cmd
}
