package store

import "database/sql"

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		email          TEXT UNIQUE NOT NULL,
		password_hash  TEXT NOT NULL,
		role           TEXT NOT NULL DEFAULT 'student',
		class          TEXT NOT NULL DEFAULT '',
		year           INT,
		roll_number    TEXT UNIQUE,
		photo          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id            TEXT PRIMARY KEY,
		student_id    TEXT NOT NULL REFERENCES users(id),
		day           DATE NOT NULL,
		class_period  INT NOT NULL,
		status        TEXT NOT NULL,
		marked_at     TEXT NOT NULL DEFAULT '00:00:00',
		marked_by     TEXT REFERENCES users(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_student_day_period
		ON attendance_records(student_id, day, class_period);
	CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance_records(day);
	CREATE INDEX IF NOT EXISTS idx_users_roll ON users(roll_number);
	`
	_, err := db.Exec(schema)
	return err
}
