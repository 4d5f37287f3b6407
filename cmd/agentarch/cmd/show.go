package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reimagen/agentarchitecture/internal/core"
)

var showCmd = &cobra.Command{
	Use:   "show [workflow-id]",
	Short: "Show stored workflow analyses",
	Long: `Show a stored workflow record, or list all records when no id is given.

A record includes the original workflow text, the merged analysis, the
approval state, and the synthesized org chart when the workflow has been
approved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShowCmd,
}

var showOutput string

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showOutput, "output", "o", "json", "Output format for a single record (json, yaml)")
}

func runShowCmd(_ *cobra.Command, args []string) error {
	logger := buildLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workflowStore, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = workflowStore.Close() }()

	ctx := context.Background()

	if len(args) == 1 {
		record, err := workflowStore.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printRecord(record, showOutput)
	}

	records, err := workflowStore.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no stored workflows")
		return nil
	}

	for _, record := range records {
		fmt.Println(formatRecordLine(record))
	}
	return nil
}

// formatRecordLine renders one listing row. A record can carry a nil analysis
// when its stored analysis column is null.
func formatRecordLine(record core.WorkflowRecord) string {
	steps := 0
	if record.Analysis != nil {
		steps = len(record.Analysis.Steps)
	}
	return fmt.Sprintf("%s  %-9s  %d steps  %s",
		record.WorkflowID,
		record.ApprovalStatus,
		steps,
		record.CreatedAt.Format("2006-01-02 15:04:05"),
	)
}

func printRecord(v interface{}, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(v)
	case "json", "":
		data, err = json.MarshalIndent(v, "", "  ")
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
