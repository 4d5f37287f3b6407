package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/reimagen/agentarchitecture/internal/adapters/llm"
	"github.com/reimagen/agentarchitecture/internal/adapters/store"
	"github.com/reimagen/agentarchitecture/internal/config"
	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/fsutil"
	"github.com/reimagen/agentarchitecture/internal/logging"
)

// buildLogger creates the process logger from global flags.
func buildLogger() *logging.Logger {
	level := logLevel
	if quiet {
		level = "error"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: logFormat,
		Output: os.Stderr,
	})
}

// loadConfig loads and validates the application configuration.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLLMClient creates the model client from configuration.
func buildLLMClient(cfg *config.Config) (core.LLMClient, error) {
	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	var opts []llm.GeminiOption
	if cfg.LLM.Model != "" {
		opts = append(opts, llm.WithModel(cfg.LLM.Model))
	}
	if cfg.LLM.Endpoint != "" {
		opts = append(opts, llm.WithEndpoint(cfg.LLM.Endpoint))
	}
	return llm.NewGemini(apiKey, opts...)
}

// buildStore opens the workflow store from configuration.
func buildStore(cfg *config.Config, logger *logging.Logger) (core.WorkflowStore, error) {
	return store.NewSQLiteStore(cfg.Store.Path, store.WithLogger(logger))
}

// getWorkflowText resolves the workflow description from the argument or the
// --file flag.
func getWorkflowText(args []string, file string) (string, error) {
	if file != "" {
		data, err := fsutil.ReadFileScoped(file)
		if err != nil {
			return "", fmt.Errorf("reading workflow file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	return "", fmt.Errorf("workflow text required: pass it as an argument or via --file")
}

// stageTimeout parses the configured per-stage timeout, falling back to a
// sane default.
func stageTimeout(cfg *config.Config) time.Duration {
	if cfg.Pipeline.StageTimeout != "" {
		if d, err := time.ParseDuration(cfg.Pipeline.StageTimeout); err == nil && d > 0 {
			return d
		}
	}
	return 90 * time.Second
}
