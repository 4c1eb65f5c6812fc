package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"switchboard/internal/calls"
	"switchboard/internal/redact"
	"switchboard/internal/scrub"
)

func newRedactCommand() *cobra.Command {
	var inputFile string
	var asTranscript bool

	cmd := &cobra.Command{
		Use:         "redact [text...]",
		Short:       "Scrub sensitive content from text or a JSON transcript",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readRedactInput(cmd.InOrStdin(), inputFile, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asTranscript {
				messages, err := calls.ParseTranscript(text)
				if err != nil {
					return err
				}
				scrubbed, count := scrub.ScrubTranscript(messages)
				encoded, err := json.Marshal(scrubbed)
				if err != nil {
					return fmt.Errorf("encode scrubbed transcript: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
				fmt.Fprintf(cmd.ErrOrStderr(), "Redacted %d segment(s)\n", count)
				return nil
			}

			result := redact.Scrub(text)
			fmt.Fprintln(out, result.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "Redacted %d segment(s)\n", result.RedactedCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Read text from a file instead of arguments")
	cmd.Flags().BoolVar(&asTranscript, "transcript", false, "Treat the input as a JSON transcript and scrub each message")
	return cmd
}

func readRedactInput(stdin io.Reader, inputFile string, args []string) (string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
