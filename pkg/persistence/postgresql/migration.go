package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL,
				organization_id VARCHAR(255) NOT NULL,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				parent_id UUID,
				name_template TEXT NOT NULL DEFAULT '',
				activities JSONB NOT NULL DEFAULT '[]',
				transitions JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_organization ON workflows(organization_id);
			CREATE INDEX idx_workflows_status ON workflows(status);

			CREATE TABLE process_instances (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id),
				organization_id VARCHAR(255) NOT NULL,
				name VARCHAR(512) NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL,
				current_activity_id VARCHAR(255) NOT NULL,
				assigned_user_id VARCHAR(255),
				assigned_department_id VARCHAR(255),
				assigned_position_id VARCHAR(255),
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_process_instances_status ON process_instances(status);
			CREATE INDEX idx_process_instances_assigned_user ON process_instances(assigned_user_id);
			CREATE INDEX idx_process_instances_assigned_position ON process_instances(assigned_position_id);
			CREATE INDEX idx_process_instances_assigned_department ON process_instances(assigned_department_id);
			CREATE INDEX idx_process_instances_organization ON process_instances(organization_id);
			CREATE INDEX idx_process_instances_created_at ON process_instances(created_at);

			CREATE TABLE process_data (
				process_id UUID NOT NULL REFERENCES process_instances(id) ON DELETE CASCADE,
				activity_id VARCHAR(255) NOT NULL,
				field_name VARCHAR(255) NOT NULL,
				value TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (process_id, activity_id, field_name)
			);

			CREATE TABLE process_history (
				id UUID PRIMARY KEY,
				process_id UUID NOT NULL REFERENCES process_instances(id) ON DELETE CASCADE,
				activity_id VARCHAR(255) NOT NULL,
				action VARCHAR(50) NOT NULL,
				comment TEXT NOT NULL DEFAULT '',
				user_id VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_process_history_process ON process_history(process_id, created_at);
			CREATE INDEX idx_process_history_action ON process_history(action);

			CREATE TABLE organizations (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				settings JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE departments (
				id VARCHAR(255) PRIMARY KEY,
				organization_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				supervisor_id VARCHAR(255) NOT NULL DEFAULT ''
			);

			CREATE TABLE positions (
				id VARCHAR(255) PRIMARY KEY,
				department_id VARCHAR(255) NOT NULL REFERENCES departments(id),
				name VARCHAR(255) NOT NULL
			);

			CREATE TABLE employee_positions (
				user_id VARCHAR(255) NOT NULL,
				position_id VARCHAR(255) NOT NULL REFERENCES positions(id),
				PRIMARY KEY (user_id, position_id)
			);

			CREATE INDEX idx_employee_positions_position ON employee_positions(position_id);

			CREATE TABLE scheduled_processes (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id),
				organization_id VARCHAR(255) NOT NULL,
				name VARCHAR(512) NOT NULL DEFAULT '',
				scheduled_at TIMESTAMP WITH TIME ZONE NOT NULL,
				is_recurring BOOLEAN NOT NULL DEFAULT false,
				recurrence_pattern VARCHAR(50) NOT NULL DEFAULT '',
				recurrence_interval INT NOT NULL DEFAULT 0,
				cron_expression VARCHAR(255) NOT NULL DEFAULT '',
				next_run_at TIMESTAMP WITH TIME ZONE NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_scheduled_processes_due ON scheduled_processes(active, next_run_at);
		`,
	}
}
