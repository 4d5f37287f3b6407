// Package store persists workflow analyses and owns the approval state
// machine, backed by SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/logging"
	"github.com/reimagen/agentarchitecture/internal/orgdesign"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteStore implements core.WorkflowStore with SQLite storage.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
	logger *logging.Logger
	mu     sync.RWMutex
}

// SQLiteStoreOption configures the store.
type SQLiteStoreOption func(*SQLiteStore)

// WithLogger sets the logger used for synthesis warnings.
func WithLogger(logger *logging.Logger) SQLiteStoreOption {
	return func(s *SQLiteStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string, opts ...SQLiteStoreOption) (*SQLiteStore, error) {
	s := &SQLiteStore{
		dbPath: dbPath,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// WAL mode for better concurrency under the HTTP server.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet, run initial migration.
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}

	return nil
}

// Save upserts an analysis. A fresh record starts PENDING; re-saving an
// existing workflow replaces its analysis but keeps the created_at stamp.
func (s *SQLiteStore) Save(ctx context.Context, workflowID, originalText string, analysis *core.WorkflowAnalysis) error {
	if workflowID == "" {
		return core.ErrValidation(core.CodeInvalidState, "workflow id must not be empty")
	}
	if analysis == nil {
		return core.ErrValidation(core.CodeInvalidState, "analysis must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return core.ErrSerialization("marshaling analysis").WithCause(err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (workflow_id, original_text, analysis_json, approval_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(workflow_id) DO UPDATE SET
			original_text = excluded.original_text,
			analysis_json = excluded.analysis_json,
			updated_at = excluded.updated_at`,
		workflowID, originalText, string(analysisJSON), string(core.ApprovalPending), now, now,
	)
	if err != nil {
		return fmt.Errorf("saving workflow %s: %w", workflowID, err)
	}
	return nil
}

// Get returns the stored record for a workflow id.
func (s *SQLiteStore) Get(ctx context.Context, workflowID string) (*core.WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.get(ctx, s.db, workflowID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLiteStore) get(ctx context.Context, q querier, workflowID string) (*core.WorkflowRecord, error) {
	row := q.QueryRowContext(ctx, `
		SELECT workflow_id, workflow_name, original_text, analysis_json,
		       approval_status, approved_by, approved_at,
		       org_chart_json, agent_registry_json, tool_registry_json,
		       created_at, updated_at
		FROM workflows WHERE workflow_id = ?`, workflowID)

	record, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound(core.CodeWorkflowNotFound, fmt.Sprintf("workflow %s not found", workflowID))
	}
	if err != nil {
		return nil, fmt.Errorf("reading workflow %s: %w", workflowID, err)
	}
	return record, nil
}

// Approve transitions a workflow from PENDING to APPROVED and synthesizes
// its agent org chart. Synthesis failure is logged and the approval still
// succeeds; the chart can be regenerated later from the stored analysis.
func (s *SQLiteStore) Approve(ctx context.Context, workflowID, approvedBy string) (*core.ApprovalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	record, err := s.get(ctx, tx, workflowID)
	if err != nil {
		return nil, err
	}
	if record.ApprovalStatus != core.ApprovalPending {
		return nil, core.ErrState(core.CodeInvalidState,
			fmt.Sprintf("workflow %s is %s, only PENDING workflows can be approved", workflowID, record.ApprovalStatus))
	}

	approvedAt := time.Now().UTC()
	result := &core.ApprovalResult{
		WorkflowID: workflowID,
		Status:     core.ApprovalApproved,
		ApprovedBy: approvedBy,
		ApprovedAt: approvedAt,
	}

	var chartJSON, agentsJSON, toolsJSON sql.NullString
	if record.Analysis != nil {
		chart := orgdesign.Synthesize(record.Analysis)
		agentRegistry := orgdesign.BuildAgentRegistry(chart)
		toolRegistry := orgdesign.BuildToolRegistry(chart)

		if chartJSON.String, err = marshalString(chart); err != nil {
			s.logger.Warn("org chart synthesis failed", "workflow_id", workflowID, "error", err)
		} else {
			chartJSON.Valid = true
			agentsJSON.String, _ = marshalString(agentRegistry)
			agentsJSON.Valid = true
			toolsJSON.String, _ = marshalString(toolRegistry)
			toolsJSON.Valid = true

			result.OrgChart = chart
			result.AgentRegistry = agentRegistry
			result.ToolRegistry = toolRegistry
		}
	} else {
		s.logger.Warn("workflow has no analysis, skipping org chart synthesis", "workflow_id", workflowID)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE workflows SET
			approval_status = ?,
			approved_by = ?,
			approved_at = ?,
			org_chart_json = ?,
			agent_registry_json = ?,
			tool_registry_json = ?,
			updated_at = ?
		WHERE workflow_id = ?`,
		string(core.ApprovalApproved), approvedBy, approvedAt.Format(time.RFC3339Nano),
		chartJSON, agentsJSON, toolsJSON,
		approvedAt.Format(time.RFC3339Nano), workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("approving workflow %s: %w", workflowID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}
	return result, nil
}

// List returns all stored records, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]core.WorkflowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT workflow_id, workflow_name, original_text, analysis_json,
		       approval_status, approved_by, approved_at,
		       org_chart_json, agent_registry_json, tool_registry_json,
		       created_at, updated_at
		FROM workflows ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.WorkflowRecord
	for rows.Next() {
		record, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workflow: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workflows: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkflow(row rowScanner) (*core.WorkflowRecord, error) {
	var (
		record                           core.WorkflowRecord
		analysisJSON                     string
		status                           string
		approvedAt                       sql.NullString
		chartJSON, agentsJSON, toolsJSON sql.NullString
		createdAt, updatedAt             string
	)

	err := row.Scan(
		&record.WorkflowID, &record.WorkflowName, &record.OriginalText, &analysisJSON,
		&status, &record.ApprovedBy, &approvedAt,
		&chartJSON, &agentsJSON, &toolsJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ApprovalStatus = core.ApprovalStatus(status)
	if err := json.Unmarshal([]byte(analysisJSON), &record.Analysis); err != nil {
		return nil, core.ErrSerialization("unmarshaling stored analysis").WithCause(err)
	}
	if approvedAt.Valid && approvedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, approvedAt.String)
		if err == nil {
			record.ApprovedAt = &t
		}
	}
	if chartJSON.Valid {
		_ = json.Unmarshal([]byte(chartJSON.String), &record.OrgChart)
	}
	if agentsJSON.Valid {
		_ = json.Unmarshal([]byte(agentsJSON.String), &record.AgentRegistry)
	}
	if toolsJSON.Valid {
		_ = json.Unmarshal([]byte(toolsJSON.String), &record.ToolRegistry)
	}
	record.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	record.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &record, nil
}

func marshalString(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
