package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/persistence"
)

const executionColumns = `id, node_type, status, parameters, input_items, output_items,
	succeeded_items, failed_items, error_message, created_at, completed_at`

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Save inserts the execution or replaces the stored row with the same ID.
func (er *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	parametersJSON, err := json.Marshal(nonNilMap(execution.Parameters))
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	inputJSON, err := json.Marshal(nonNilItems(execution.Input))
	if err != nil {
		return fmt.Errorf("failed to marshal input items: %w", err)
	}

	outputJSON, err := json.Marshal(nonNilItems(execution.Output))
	if err != nil {
		return fmt.Errorf("failed to marshal output items: %w", err)
	}

	query := `
		INSERT INTO executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			node_type = EXCLUDED.node_type,
			status = EXCLUDED.status,
			parameters = EXCLUDED.parameters,
			input_items = EXCLUDED.input_items,
			output_items = EXCLUDED.output_items,
			succeeded_items = EXCLUDED.succeeded_items,
			failed_items = EXCLUDED.failed_items,
			error_message = EXCLUDED.error_message,
			completed_at = EXCLUDED.completed_at
	`

	_, err = er.db.ExecContext(ctx, query,
		execution.ID,
		execution.NodeType,
		execution.Status,
		parametersJSON,
		inputJSON,
		outputJSON,
		execution.SucceededItems,
		execution.FailedItems,
		sql.NullString{String: execution.ErrorMessage, Valid: execution.ErrorMessage != ""},
		execution.CreatedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE id = $1`

	execution, err := er.scanExecution(er.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// List returns executions matching filter, newest first.
func (er *ExecutionRepository) List(ctx context.Context, filter persistence.ExecutionFilter) ([]*models.Execution, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.NodeType != "" {
		args = append(args, filter.NodeType)
		conditions = append(conditions, fmt.Sprintf("node_type = $%d", len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + executionColumns + ` FROM executions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.EffectiveLimit())
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := er.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			er.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	executions := []*models.Execution{}

	for rows.Next() {
		execution, err := er.scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate executions: %w", err)
	}

	return executions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (er *ExecutionRepository) scanExecution(row scanner) (*models.Execution, error) {
	var (
		execution                          models.Execution
		parametersJSON, inputJSON, outJSON []byte
		errorMessage                       sql.NullString
		completedAt                        sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.NodeType,
		&execution.Status,
		&parametersJSON,
		&inputJSON,
		&outJSON,
		&execution.SucceededItems,
		&execution.FailedItems,
		&errorMessage,
		&execution.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(parametersJSON, &execution.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	if err := json.Unmarshal(inputJSON, &execution.Input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input items: %w", err)
	}

	if err := json.Unmarshal(outJSON, &execution.Output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal output items: %w", err)
	}

	execution.ErrorMessage = errorMessage.String

	if completedAt.Valid {
		execution.CompletedAt = &completedAt.Time
	}

	return &execution, nil
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}

func nonNilItems(items []models.Item) []models.Item {
	if items == nil {
		return []models.Item{}
	}

	return items
}
