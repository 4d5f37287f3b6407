package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve <workflow-id>",
	Short: "Approve a pending workflow analysis",
	Long: `Transition a stored analysis from PENDING to APPROVED.

Approval triggers org-chart synthesis: the approved analysis is turned
into a set of agent cards, tool registrations, and dependency
connections. The synthesized chart is stored with the workflow and
printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: runApproveCmd,
}

var approvedBy string

func init() {
	rootCmd.AddCommand(approveCmd)

	approveCmd.Flags().StringVar(&approvedBy, "by", "", "Name of the approver (defaults to $USER)")
}

func runApproveCmd(_ *cobra.Command, args []string) error {
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

	approver := approvedBy
	if approver == "" {
		approver = os.Getenv("USER")
	}
	if approver == "" {
		approver = "unknown"
	}

	result, err := workflowStore.Approve(context.Background(), args[0], approver)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding approval result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
