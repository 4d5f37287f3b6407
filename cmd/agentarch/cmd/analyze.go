package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reimagen/agentarchitecture/internal/analyzer"
	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/fsutil"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [workflow text]",
	Short: "Analyze a workflow description",
	Long: `Run the full analysis pipeline over a free-text workflow description.

The pipeline parses the workflow into discrete steps, then assesses risk
and automation feasibility for every step in parallel, and merges the
results into a single report. The report is persisted in PENDING state
for later approval.

The workflow text can be provided as an argument or via --file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyzeCmd,
}

var (
	analyzeFile   string
	analyzeOutput string
	analyzeOut    string
	analyzeNoSave bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Read workflow text from file")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "json", "Output format (json, yaml)")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Skip persisting the analysis")
}

func runAnalyzeCmd(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping...")
		cancel()
	}()

	logger := buildLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workflowText, err := getWorkflowText(args, analyzeFile)
	if err != nil {
		return err
	}

	llmClient, err := buildLLMClient(cfg)
	if err != nil {
		return err
	}

	opts := []analyzer.Option{
		analyzer.WithSummarizer(cfg.Pipeline.SummarizerEnabled),
		analyzer.WithStageTimeout(stageTimeout(cfg)),
	}
	if !analyzeNoSave {
		workflowStore, err := buildStore(cfg, logger)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer func() { _ = workflowStore.Close() }()
		opts = append(opts, analyzer.WithStore(workflowStore))
	}

	orchestrator := analyzer.New(llmClient, logger, opts...)

	analysis, err := orchestrator.AnalyzeWorkflow(ctx, workflowText)
	if err != nil {
		return err
	}

	return writeReport(analysis, analyzeOutput, analyzeOut)
}

// writeReport renders the analysis and writes it to stdout or, atomically, to
// a file.
func writeReport(analysis *core.WorkflowAnalysis, format, outPath string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(analysis)
	case "json", "":
		data, err = json.MarshalIndent(analysis, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if outPath != "" {
		if err := fsutil.WriteFileAtomic(outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}

	_, err = os.Stdout.Write(data)
	return err
}
