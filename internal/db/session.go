package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session represents one run of the capture loop, from sensor connect to
// shutdown. EndedAtNs and StopReason stay NULL while the session is live.
type Session struct {
	ID          string  `json:"id"`
	StartedAtNs int64   `json:"started_at_ns"`
	Device      string  `json:"device"`
	Endpoint    string  `json:"endpoint"`
	MotorPWM    int     `json:"motor_pwm"`
	EndedAtNs   *int64  `json:"ended_at_ns"`
	StopReason  *string `json:"stop_reason"`
	FramesSent  int64   `json:"frames_sent"`
	SamplesSeen int64   `json:"samples_seen"`
}

// RevolutionRecord summarises one revolution of the sensor for archival.
// Distances are millimetres.
type RevolutionRecord struct {
	SessionID      string  `json:"session_id"`
	Seq            uint64  `json:"seq"`
	CapturedAtNs   int64   `json:"captured_at_ns"`
	SampleCount    int     `json:"sample_count"`
	BucketsUpdated int     `json:"buckets_updated"`
	MinDistance    float64 `json:"min_mm"`
	MaxDistance    float64 `json:"max_mm"`
	MeanDistance   float64 `json:"mean_mm"`
}

// CreateSession inserts a new session row. A missing ID is filled in with a
// fresh UUID, and a zero StartedAtNs with the current time.
func (db *DB) CreateSession(session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAtNs == 0 {
		session.StartedAtNs = time.Now().UnixNano()
	}

	query := `
		INSERT INTO sessions (
			id, started_at_ns, device, endpoint, motor_pwm,
			frames_sent, samples_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.DB.Exec(
		query,
		session.ID,
		session.StartedAtNs,
		session.Device,
		session.Endpoint,
		session.MotorPWM,
		session.FramesSent,
		session.SamplesSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// EndSession stamps the session with its end time, stop reason and final
// counters.
func (db *DB) EndSession(id string, reason string, framesSent, samplesSeen int64) error {
	query := `
		UPDATE sessions SET
			ended_at_ns = ?,
			stop_reason = ?,
			frames_sent = ?,
			samples_seen = ?
		WHERE id = ?
	`

	result, err := db.DB.Exec(query, time.Now().UnixNano(), reason, framesSent, samplesSeen, id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(id string) (*Session, error) {
	query := `
		SELECT
			id, started_at_ns, device, endpoint, motor_pwm,
			ended_at_ns, stop_reason, frames_sent, samples_seen
		FROM sessions
		WHERE id = ?
	`

	var session Session
	err := db.DB.QueryRow(query, id).Scan(
		&session.ID,
		&session.StartedAtNs,
		&session.Device,
		&session.Endpoint,
		&session.MotorPWM,
		&session.EndedAtNs,
		&session.StopReason,
		&session.FramesSent,
		&session.SamplesSeen,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// ActiveSession returns the most recently started session that has not been
// ended, or nil if every session is closed.
func (db *DB) ActiveSession() (*Session, error) {
	query := `
		SELECT
			id, started_at_ns, device, endpoint, motor_pwm,
			ended_at_ns, stop_reason, frames_sent, samples_seen
		FROM sessions
		WHERE ended_at_ns IS NULL
		ORDER BY started_at_ns DESC
		LIMIT 1
	`

	var session Session
	err := db.DB.QueryRow(query).Scan(
		&session.ID,
		&session.StartedAtNs,
		&session.Device,
		&session.Endpoint,
		&session.MotorPWM,
		&session.EndedAtNs,
		&session.StopReason,
		&session.FramesSent,
		&session.SamplesSeen,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	return &session, nil
}

// ListSessions retrieves the most recent sessions, newest first.
func (db *DB) ListSessions(limit int) ([]Session, error) {
	query := `
		SELECT
			id, started_at_ns, device, endpoint, motor_pwm,
			ended_at_ns, stop_reason, frames_sent, samples_seen
		FROM sessions
		ORDER BY started_at_ns DESC
		LIMIT ?
	`

	rows, err := db.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		err := rows.Scan(
			&session.ID,
			&session.StartedAtNs,
			&session.Device,
			&session.Endpoint,
			&session.MotorPWM,
			&session.EndedAtNs,
			&session.StopReason,
			&session.FramesSent,
			&session.SamplesSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// RecordRevolution archives the summary of one revolution.
func (db *DB) RecordRevolution(rec *RevolutionRecord) error {
	query := `
		INSERT INTO revolutions (
			session_id, seq, captured_at_ns, sample_count,
			buckets_updated, min_mm, max_mm, mean_mm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.DB.Exec(
		query,
		rec.SessionID,
		rec.Seq,
		rec.CapturedAtNs,
		rec.SampleCount,
		rec.BucketsUpdated,
		rec.MinDistance,
		rec.MaxDistance,
		rec.MeanDistance,
	)
	if err != nil {
		return fmt.Errorf("failed to record revolution: %w", err)
	}

	return nil
}

// RevolutionsForSession retrieves the most recent revolution summaries for a
// session, newest first.
func (db *DB) RevolutionsForSession(sessionID string, limit int) ([]RevolutionRecord, error) {
	query := `
		SELECT
			session_id, seq, captured_at_ns, sample_count,
			buckets_updated, min_mm, max_mm, mean_mm
		FROM revolutions
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`

	rows, err := db.DB.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query revolutions: %w", err)
	}
	defer rows.Close()

	var records []RevolutionRecord
	for rows.Next() {
		var rec RevolutionRecord
		err := rows.Scan(
			&rec.SessionID,
			&rec.Seq,
			&rec.CapturedAtNs,
			&rec.SampleCount,
			&rec.BucketsUpdated,
			&rec.MinDistance,
			&rec.MaxDistance,
			&rec.MeanDistance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revolution: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revolutions: %w", err)
	}

	return records, nil
}

// RevolutionCount returns the number of archived revolutions for a session.
func (db *DB) RevolutionCount(sessionID string) (int64, error) {
	var count int64
	err := db.QueryRow("SELECT COUNT(*) FROM revolutions WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count revolutions: %w", err)
	}
	return count, nil
}
