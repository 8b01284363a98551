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
)

func searchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "Manage search requests",
		Long:  `Create, list and toggle the standing searches the watcher polls.`,
	}

	cmd.AddCommand(addSearchCmd())
	cmd.AddCommand(listSearchesCmd())
	cmd.AddCommand(setSearchActiveCmd("activate", true))
	cmd.AddCommand(setSearchActiveCmd("deactivate", false))

	return cmd
}

func addSearchCmd() *cobra.Command {
	var (
		cornerSide  string
		textQuery   string
		includeCSV  string
		excludeCSV  string
		budget      int
		maxDistance int
	)

	cmd := &cobra.Command{
		Use:   "add <client-id>",
		Short: "Create a search request for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			clientID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("client-id must be an integer: %w", err)
			}

			side, ok := model.ParseCornerSide(cornerSide)
			if !ok {
				return fmt.Errorf("corner side must be 'left' or 'right', got %q", cornerSide)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			req := &model.SearchRequest{
				ClientID:           clientID,
				CornerSide:         side,
				TextQuery:          textQuery,
				IncludeKeywordsCSV: includeCSV,
				ExcludeKeywordsCSV: excludeCSV,
				IsActive:           true,
			}
			if cmd.Flags().Changed("budget") {
				req.Budget = &budget
			}
			if cmd.Flags().Changed("max-distance") {
				req.MaxDistanceKM = &maxDistance
			}

			if err := store.CreateSearchRequest(ctx, req); err != nil {
				return fmt.Errorf("failed to create search request: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Search request %d created for client %d", req.ID, clientID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&cornerSide, "corner-side", "", "required corner side: left or right")
	cmd.Flags().StringVar(&textQuery, "query", "", "explicit search query (defaults to the watcher's default)")
	cmd.Flags().StringVar(&includeCSV, "include", "", "comma-separated keywords the title must contain")
	cmd.Flags().StringVar(&excludeCSV, "exclude", "", "comma-separated keywords that veto a match")
	cmd.Flags().IntVar(&budget, "budget", 0, "maximum price in euros")
	cmd.Flags().IntVar(&maxDistance, "max-distance", 0, "maximum distance in km")
	_ = cmd.MarkFlagRequired("corner-side")

	return cmd
}

func listSearchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all search requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			requests, err := store.ListSearchRequests(ctx)
			if err != nil {
				return fmt.Errorf("failed to list search requests: %w", err)
			}

			if len(requests) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No search requests yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Client"),
				cli.TableHeaderStyle.Render("Corner"),
				cli.TableHeaderStyle.Render("Query"),
				cli.TableHeaderStyle.Render("Budget"),
				cli.TableHeaderStyle.Render("Active"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 6),
				strings.Repeat("-", 6), strings.Repeat("-", 20),
				strings.Repeat("-", 8), strings.Repeat("-", 6))

			for _, r := range requests {
				budget := "-"
				if r.Budget != nil {
					budget = fmt.Sprintf("€%d", *r.Budget)
				}
				active := cli.SuccessStyle.Render("yes")
				if !r.IsActive {
					active = cli.SubtleStyle.Render("no")
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
					r.ID, r.ClientID, r.CornerSide,
					orDash(r.TextQuery), budget, active)
			}

			return nil
		},
	}
}

func setSearchActiveCmd(use string, active bool) *cobra.Command {
	short := "Resume polling for a search request"
	if !active {
		short = "Pause polling for a search request"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
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

			if err := store.SetSearchRequestActive(ctx, id, active); err != nil {
				return fmt.Errorf("failed to update search request: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Search request %d %sd", id, use)))
			return nil
		},
	}
}
