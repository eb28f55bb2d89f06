package models

import "time"

// ExecutionStatus is the lifecycle state of a node execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Execution records one run of a node over a batch of input items.
// Per-item failures do not fail the execution; FailedItems counts them.
type Execution struct {
	ID             string          `json:"id"`
	NodeType       string          `json:"node_type"`
	Status         ExecutionStatus `json:"status"`
	Parameters     map[string]any  `json:"parameters"`
	Input          []Item          `json:"input"`
	Output         []Item          `json:"output,omitempty"`
	SucceededItems int             `json:"succeeded_items"`
	FailedItems    int             `json:"failed_items"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}
