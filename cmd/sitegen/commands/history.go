package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Database string `help:"History database (overrides history.database)"`
	Limit    int    `short:"n" help:"Number of passes to show" default:"20"`
	Build    string `help:"Show only passes of this build ID"`
}

func (h *HistoryCmd) Run(ctx context.Context, root *CLI) error {
	path := h.Database
	if path == "" {
		path = root.cfg.History.Database
	}
	if path == "" {
		return ferrors.ConfigError("history database not configured").
			WithContext("hint", "set history.database or pass --database").Build()
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var entries []history.Entry
	if h.Build != "" {
		entries, err = store.ByBuild(ctx, h.Build)
	} else {
		entries, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(root.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tNAMESPACE\tOUTCOME\tWRITTEN\tPRUNED\tWARNINGS\tFAILED\tDURATION")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			e.StartedAt.Format(time.RFC3339), e.BuildID, e.Namespace, e.Outcome,
			e.Written, e.Pruned, e.Warnings, e.Failed, e.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}
