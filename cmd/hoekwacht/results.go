package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hoekwacht/hoekwacht/internal/cli"
	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect and triage match results",
		Long:  `List persisted matches for a search request and work them through their lifecycle.`,
	}

	cmd.AddCommand(listResultsCmd())
	cmd.AddCommand(viewResultCmd())
	cmd.AddCommand(setResultStatusCmd())
	cmd.AddCommand(forwardResultCmd())

	return cmd
}

func listResultsCmd() *cobra.Command {
	var (
		minPercent  float64
		maxPrice    int
		maxDistance int
		cornerSide  string
		status      string
	)

	cmd := &cobra.Command{
		Use:   "list <search-request-id>",
		Short: "List match results for a search request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			requestID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("search-request-id must be an integer: %w", err)
			}

			var filter service.ResultFilter
			if cmd.Flags().Changed("min-percent") {
				filter.MinMatchPercent = &minPercent
			}
			if cmd.Flags().Changed("max-price") {
				filter.MaxPrice = &maxPrice
			}
			if cmd.Flags().Changed("max-distance") {
				filter.MaxDistanceKM = &maxDistance
			}
			if cornerSide != "" {
				side, ok := model.ParseCornerSide(cornerSide)
				if !ok {
					return fmt.Errorf("corner side must be 'left' or 'right', got %q", cornerSide)
				}
				filter.CornerSide = &side
			}
			if status != "" {
				st, ok := model.ParseResultStatus(status)
				if !ok {
					return fmt.Errorf("status must be new, viewed or completed, got %q", status)
				}
				filter.Status = &st
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			results, err := store.ListResults(ctx, requestID, filter)
			if err != nil {
				return fmt.Errorf("failed to list results: %w", err)
			}

			if len(results) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No matching results."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Match"),
				cli.TableHeaderStyle.Render("Title"),
				cli.TableHeaderStyle.Render("Price"),
				cli.TableHeaderStyle.Render("Dist"),
				cli.TableHeaderStyle.Render("Status"),
				cli.TableHeaderStyle.Render("Fwd"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 6),
				strings.Repeat("-", 30), strings.Repeat("-", 6),
				strings.Repeat("-", 5), strings.Repeat("-", 9),
				strings.Repeat("-", 3))

			for _, r := range results {
				price := "-"
				if r.Price != nil {
					price = fmt.Sprintf("€%d", *r.Price)
				}
				dist := "-"
				if r.DistanceKM != nil {
					dist = fmt.Sprintf("%dkm", *r.DistanceKM)
				}
				fwd := "-"
				if r.Forwarded {
					fwd = "yes"
				}
				fmt.Fprintf(w, "%d\t%.1f%%\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.MatchPercent, truncateTitle(r.Title, 40),
					price, dist, r.Status, fwd)
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&minPercent, "min-percent", 0, "minimum match percentage")
	cmd.Flags().IntVar(&maxPrice, "max-price", 0, "maximum price in euros")
	cmd.Flags().IntVar(&maxDistance, "max-distance", 0, "maximum distance in km")
	cmd.Flags().StringVar(&cornerSide, "corner-side", "", "filter by corner side: left or right")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: new, viewed or completed")

	return cmd
}

func viewResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <id>",
		Short: "Show one match result in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			r, err := store.GetResult(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load result: %w", err)
			}

			fmt.Println(cli.FormatTitle(r.Title))
			fmt.Printf("Match:     %.1f%%\n", r.MatchPercent)
			if r.Price != nil {
				fmt.Printf("Price:     €%d\n", *r.Price)
			}
			if r.DistanceKM != nil {
				fmt.Printf("Distance:  %d km\n", *r.DistanceKM)
			}
			if r.CornerSide != "" {
				fmt.Printf("Corner:    %s\n", r.CornerSide)
			}
			fmt.Printf("Status:    %s\n", r.Status)
			fmt.Printf("Forwarded: %t\n", r.Forwarded)
			fmt.Printf("Link:      %s\n", r.URL)
			for _, p := range r.PhotoURLs {
				fmt.Println(cli.SubtleStyle.Render("Photo:     " + p))
			}
			if r.Notes != "" {
				fmt.Printf("Notes:     %s\n", r.Notes)
			}
			fmt.Println(cli.SubtleStyle.Render("First seen " + r.CreatedAt.Local().Format("2006-01-02 15:04")))

			return nil
		},
	}
}

func setResultStatusCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "status <id> <new|viewed|completed>",
		Short: "Update the status of a match result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer: %w", err)
			}

			status, ok := model.ParseResultStatus(args[1])
			if !ok {
				return fmt.Errorf("status must be new, viewed or completed, got %q", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdateResultStatus(ctx, id, status, notes); err != nil {
				return fmt.Errorf("failed to update result: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Result %d marked %s", id, status)))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "replace the result's notes")

	return cmd
}

func forwardResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forward <id>",
		Short: "Mark a match result as forwarded to the client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.MarkResultForwarded(ctx, id); err != nil {
				return fmt.Errorf("failed to mark result forwarded: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Result %d marked forwarded", id)))
			return nil
		},
	}
}

func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
