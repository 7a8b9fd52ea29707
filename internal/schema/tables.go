package schema

// TableDefinitions creates the application tables. Statements are idempotent
// and run in order by `mindbook system migrate`.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS therapists (
		tid UUID PRIMARY KEY,
		user_id UUID UNIQUE REFERENCES accounts(id) ON DELETE SET NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		bio TEXT NOT NULL DEFAULT '',
		education TEXT NOT NULL DEFAULT '',
		languages TEXT NOT NULL DEFAULT '',
		areas_covered TEXT NOT NULL DEFAULT '',
		image_data BYTEA,
		image_mime VARCHAR(64) NOT NULL DEFAULT '',
		availability_hours TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		uid UUID PRIMARY KEY,
		account_id UUID UNIQUE REFERENCES accounts(id) ON DELETE SET NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(32) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		assigned_tid UUID REFERENCES therapists(tid) ON DELETE SET NULL,
		call_request_status VARCHAR(16) NOT NULL DEFAULT 'none'
			CHECK (call_request_status IN ('none', 'pending', 'completed')),
		form_response JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS packages (
		pid UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		cost NUMERIC(12, 2) NOT NULL,
		duration INTEGER NOT NULL CHECK (duration > 0),
		min_commitment INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id UUID PRIMARY KEY,
		client_uid UUID NOT NULL REFERENCES users(uid),
		therapist_tid UUID NOT NULL REFERENCES therapists(tid),
		status VARCHAR(16) NOT NULL DEFAULT 'active'
			CHECK (status IN ('active', 'ended', 'cancelled', 'inactive')),
		start_date DATE NOT NULL,
		end_date DATE,
		sessions_count INTEGER NOT NULL DEFAULT 0,
		next_session_date DATE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS assignments_client_status_idx ON assignments (client_uid, status)`,
	`CREATE TABLE IF NOT EXISTS therapist_schedules (
		schedule_id UUID PRIMARY KEY,
		tid UUID NOT NULL REFERENCES therapists(tid) ON DELETE CASCADE,
		day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS therapist_schedules_tid_day_idx ON therapist_schedules (tid, day_of_week)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		sid UUID PRIMARY KEY,
		uid UUID NOT NULL REFERENCES users(uid),
		tid UUID NOT NULL REFERENCES therapists(tid),
		package_pid UUID REFERENCES packages(pid) ON DELETE SET NULL,
		scheduled_date DATE NOT NULL,
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'declined', 'cancelled', 'completed')),
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		report_submitted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_tid_date_idx ON sessions (tid, scheduled_date)`,
	`CREATE TABLE IF NOT EXISTS reports (
		report_id UUID PRIMARY KEY,
		session_id UUID NOT NULL UNIQUE REFERENCES sessions(sid) ON DELETE CASCADE,
		activities TEXT[] NOT NULL DEFAULT '{}',
		mood_start VARCHAR(32) NOT NULL,
		mood_end VARCHAR(32) NOT NULL,
		engagement VARCHAR(16) NOT NULL,
		key_observations TEXT NOT NULL DEFAULT '',
		overall_comments TEXT NOT NULL DEFAULT '',
		improvements_or_challenges TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
