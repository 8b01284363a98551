package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hoekwacht/hoekwacht/internal/cli"
)

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle and exit",
		Long: `Poll every active search request once, scoring and persisting matches.
New matches are alerted exactly as the background watcher would.`,
		RunE: runPoll,
	}
}

func runPoll(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	w, err := initWatcher(store)
	if err != nil {
		return err
	}

	requests, err := store.ListActiveSearchRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active search requests: %w", err)
	}

	if len(requests) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No active search requests to poll."))
		return nil
	}

	bar := progressbar.Default(int64(len(requests)), "polling")

	var created int
	for i := range requests {
		n, pollErr := w.PollRequest(ctx, &requests[i])
		if pollErr != nil {
			fmt.Println(cli.FormatWarning(fmt.Sprintf(
				"request %d: %v", requests[i].ID, pollErr)))
		}
		created += n
		_ = bar.Add(1)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Polled %d request(s), %d new match(es)", len(requests), created)))

	return nil
}
