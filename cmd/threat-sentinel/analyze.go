package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"threat-sentinel/internal/app"

	"github.com/spf13/cobra"
)

var analyzeFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Print the sentences of a text that read as instructions",
	Long: "Segments the text into sentences and prints every sentence matching an instruction pattern.\n" +
		"The text comes from the arguments, from --file, or from stdin when neither is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _, err := loadConfig()
		if err != nil {
			return err
		}

		input, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		analyzer, err := app.NewAnalyzer(config, nil)
		if err != nil {
			return err
		}

		result := analyzer.Analyze(input)
		out := cmd.OutOrStdout()
		for _, match := range result.Matches {
			fmt.Fprintf(out, "[%s] %s\n", match.Group, match.Sentence)
		}
		fmt.Fprintf(out, "%d of %d sentences are instructions\n", len(result.Matches), result.Sentences)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Read the text from a file")
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", analyzeFile, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
