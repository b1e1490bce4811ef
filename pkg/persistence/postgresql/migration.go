package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create workflows table
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			-- Create workflow_nodes table
			CREATE TABLE workflow_nodes (
				workflow_id VARCHAR(255) NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				kind VARCHAR(50) NOT NULL CHECK (kind IN ('Trigger', 'Action', 'Condition', 'Delay', 'Approval', 'SubWorkflow', 'ErrorHandler')),
				position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
				position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
				data JSONB NOT NULL DEFAULT '{}',
				sort_order INT NOT NULL,
				PRIMARY KEY (workflow_id, id)
			);

			-- Create workflow_edges table; endpoints must be nodes of the same workflow
			CREATE TABLE workflow_edges (
				workflow_id VARCHAR(255) NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				source_node_id VARCHAR(255) NOT NULL,
				target_node_id VARCHAR(255) NOT NULL,
				label TEXT NOT NULL DEFAULT '',
				style JSONB,
				sort_order INT NOT NULL,
				PRIMARY KEY (workflow_id, id),
				FOREIGN KEY (workflow_id, source_node_id) REFERENCES workflow_nodes(workflow_id, id) ON DELETE CASCADE,
				FOREIGN KEY (workflow_id, target_node_id) REFERENCES workflow_nodes(workflow_id, id) ON DELETE CASCADE
			);
		`,
		2: `
			-- Migration 2: transition metadata and endpoint lookups
			ALTER TABLE workflow_edges ADD COLUMN transition JSONB;

			CREATE INDEX idx_workflow_edges_source ON workflow_edges(workflow_id, source_node_id);
			CREATE INDEX idx_workflow_edges_target ON workflow_edges(workflow_id, target_node_id);
		`,
	}
}
