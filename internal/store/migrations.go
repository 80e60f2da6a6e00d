package store

import "database/sql"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL DEFAULT 0,
		lon REAL NOT NULL DEFAULT 0,
		temperature REAL NOT NULL DEFAULT 0,
		wind_speed REAL NOT NULL DEFAULT 0,
		precipitation REAL NOT NULL DEFAULT 0,
		humidity REAL NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_sent INTEGER NOT NULL DEFAULT 0,
		detected_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		sent_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_dedup ON alerts(location, type, detected_at);
	CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(is_active, expires_at);`,

	`CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL DEFAULT 0,
		lon REAL NOT NULL DEFAULT 0,
		radius_km REAL NOT NULL DEFAULT 0,
		email_enabled INTEGER NOT NULL DEFAULT 1,
		push_enabled INTEGER NOT NULL DEFAULT 0,
		notify_on_low INTEGER NOT NULL DEFAULT 0,
		notify_on_medium INTEGER NOT NULL DEFAULT 1,
		notify_on_high INTEGER NOT NULL DEFAULT 1,
		notify_on_critical INTEGER NOT NULL DEFAULT 1,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_subscriptions_owner ON subscriptions(owner);`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		alert_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		status TEXT NOT NULL,
		recipient TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		sent_at INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_alert ON notifications(alert_id);
	CREATE INDEX IF NOT EXISTS idx_notifications_owner ON notifications(owner);`,
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
