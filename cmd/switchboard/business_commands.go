package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"switchboard/internal/config"
	"switchboard/internal/queue"
)

func newBusinessCommand(ctx *commandContext) *cobra.Command {
	businessCmd := &cobra.Command{
		Use:   "business",
		Short: "Manage the businesses calls are attributed to",
	}

	businessCmd.AddCommand(newBusinessAddCommand(ctx))
	businessCmd.AddCommand(newBusinessListCommand(ctx))

	return businessCmd
}

func newBusinessAddCommand(ctx *commandContext) *cobra.Command {
	var name string
	var industry string

	cmd := &cobra.Command{
		Use:   "add <businessID>",
		Short: "Register or update a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				business := queue.Business{ID: args[0], Name: name, Industry: industry}
				if err := store.UpsertBusiness(cmd.Context(), business); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Saved business %s (%s)\n", args[0], name)
				if industry != "" {
					fmt.Fprintf(out, "Transcript scrubbing: %s\n", yesNo(cfg.IsPHIIndustry(industry)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&industry, "industry", "", "Industry label, e.g. dental or legal")
	return cmd
}

func newBusinessListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				businesses, err := store.ListBusinesses(cmd.Context())
				if err != nil {
					return err
				}
				if len(businesses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No businesses registered")
					return nil
				}

				rows := make([][]string, 0, len(businesses))
				for _, business := range businesses {
					rows = append(rows, []string{
						business.ID,
						business.Name,
						titleLabel(business.Industry),
						yesNo(cfg.IsPHIIndustry(business.Industry)),
					})
				}
				table := renderTable(
					[]string{"ID", "Name", "Industry", "Scrubbed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}
