package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hoekwacht/hoekwacht/internal/cli"
	"github.com/hoekwacht/hoekwacht/internal/model"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients",
		Long:  `Register and list the people who receive match alerts.`,
	}

	cmd.AddCommand(addClientCmd())
	cmd.AddCommand(listClientsCmd())

	return cmd
}

func addClientCmd() *cobra.Command {
	var email, whatsapp string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			client := &model.Client{
				Name:     args[0],
				Email:    email,
				WhatsApp: whatsapp,
			}
			if err := store.CreateClient(ctx, client); err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Client %q created with id %d", client.Name, client.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address for alerts")
	cmd.Flags().StringVar(&whatsapp, "whatsapp", "", "WhatsApp handle for alerts")

	return cmd
}

func listClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			clients, err := store.ListClients(ctx)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}

			if len(clients) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No clients yet. Use 'hoekwacht clients add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Email"),
				cli.TableHeaderStyle.Render("WhatsApp"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 24),
				strings.Repeat("-", 16))

			for _, c := range clients {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name,
					orDash(c.Email), orDash(c.WhatsApp))
			}

			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
