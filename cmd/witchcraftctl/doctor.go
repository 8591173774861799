package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"witchcraft/internal/config"
	"witchcraft/internal/ipc"
	"witchcraft/internal/preflight"
)

var errChecksFailed = errors.New("one or more required checks failed")

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check whether the client can reach the server and start the player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			results := preflight.RunAll(preflight.Inputs{
				Config:     cfg,
				ConfigPath: path,
				ConfigSeen: exists,
				Resolver:   ipc.Resolver{},
			})

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, statusLabel(r, colorize), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, colorize))

			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}
}

func statusLabel(r preflight.Result, colorize bool) string {
	label, color := "OK", text.FgGreen
	switch {
	case !r.Passed && r.Optional:
		label, color = "WARN", text.FgYellow
	case !r.Passed:
		label, color = "FAIL", text.FgRed
	}
	if !colorize {
		return label
	}
	return color.Sprint(label)
}
