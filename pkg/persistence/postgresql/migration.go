package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE executions (
				id VARCHAR(255) PRIMARY KEY,
				node_type VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
				parameters JSONB NOT NULL DEFAULT '{}',
				input_items JSONB NOT NULL DEFAULT '[]',
				output_items JSONB NOT NULL DEFAULT '[]',
				succeeded_items INTEGER NOT NULL DEFAULT 0,
				failed_items INTEGER NOT NULL DEFAULT 0,
				error_message TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_node_type ON executions(node_type);
			CREATE INDEX idx_executions_status ON executions(status);
			CREATE INDEX idx_executions_created_at ON executions(created_at);
		`,
	}
}
