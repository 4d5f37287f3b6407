package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateLLM(&cfg.LLM)
	v.validatePipeline(&cfg.Pipeline)
	v.validateStore(&cfg.Store)
	v.validateServer(&cfg.Server)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(field string, value interface{}, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}

	switch cfg.Format {
	case "auto", "json", "pretty":
	default:
		v.addError("log.format", cfg.Format, "must be one of: auto, json, pretty")
	}
}

func (v *Validator) validateLLM(cfg *LLMConfig) {
	switch cfg.Provider {
	case "gemini":
	default:
		v.addError("llm.provider", cfg.Provider, "must be: gemini")
	}

	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err != nil {
			v.addError("llm.timeout", cfg.Timeout, "must be a valid duration")
		} else if d <= 0 {
			v.addError("llm.timeout", cfg.Timeout, "must be positive")
		}
	}
}

func (v *Validator) validatePipeline(cfg *PipelineConfig) {
	if cfg.StageTimeout != "" {
		if d, err := time.ParseDuration(cfg.StageTimeout); err != nil {
			v.addError("pipeline.stage_timeout", cfg.StageTimeout, "must be a valid duration")
		} else if d <= 0 {
			v.addError("pipeline.stage_timeout", cfg.StageTimeout, "must be positive")
		}
	}
}

func (v *Validator) validateStore(cfg *StoreConfig) {
	if cfg.Path == "" {
		v.addError("store.path", cfg.Path, "must not be empty")
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", cfg.Port, "must be between 1 and 65535")
	}
	if cfg.Host == "" {
		v.addError("server.host", cfg.Host, "must not be empty")
	}
}
