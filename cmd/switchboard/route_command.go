package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"switchboard/internal/knowledge"
)

func newRouteCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "route <question...>",
		Short:       "Show which knowledge backend would answer a caller question",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			result := knowledge.Route(query)
			fmt.Fprintf(cmd.OutOrStdout(), "Source: %s\nConfidence: %.1f\n", result.Source, result.Confidence)
			return nil
		},
	}
}
