// Package file provides file-based persistence for node executions.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/persistence"
)

const executionsDir = "executions"

// Persistence implements the persistence.Persistence interface using the file system.
// Each execution is stored as one JSON document under <root>/executions.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// validateExecutionID validates that the execution ID is safe for file operations.
func validateExecutionID(executionID string) error {
	if executionID == "" {
		return fmt.Errorf("%w: cannot be empty", persistence.ErrInvalidExecutionID)
	}

	if strings.Contains(executionID, "..") || strings.Contains(executionID, "/") || strings.Contains(executionID, "\\") {
		return fmt.Errorf("%w: contains invalid characters", persistence.ErrInvalidExecutionID)
	}

	return nil
}

func (fp *Persistence) SaveExecution(_ context.Context, execution *models.Execution) error {
	if err := validateExecutionID(execution.ID); err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	dir := filepath.Join(fp.root, executionsDir)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	// Write to a temporary file first so readers never see a partial document.
	tmp := filepath.Join(dir, "."+execution.ID+".json.tmp")

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	err = os.Rename(tmp, filepath.Join(dir, execution.ID+".json"))
	if err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	return nil
}

func (fp *Persistence) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	if err := validateExecutionID(id); err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	filePath := filepath.Join(fp.root, executionsDir, id+".json")

	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is validated and constructed safely
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to read execution %s: %w", id, err)
	}

	var execution models.Execution

	err = json.Unmarshal(data, &execution)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %s: %w", id, err)
	}

	return &execution, nil
}

func (fp *Persistence) Executions(ctx context.Context, filter persistence.ExecutionFilter) ([]*models.Execution, error) {
	dir := filepath.Join(fp.root, executionsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.Execution{}, nil
		}

		return nil, fmt.Errorf("failed to read executions directory: %w", err)
	}

	executions := make([]*models.Execution, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}

		execution, err := fp.ExecutionByID(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// Skip invalid files
			continue
		}

		if filter.Matches(execution) {
			executions = append(executions, execution)
		}
	}

	sort.SliceStable(executions, func(i, j int) bool {
		return executions[i].CreatedAt.After(executions[j].CreatedAt)
	})

	if limit := filter.EffectiveLimit(); len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}
