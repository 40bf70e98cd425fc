package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/orlanda/accounts/db"
)

func newOtpFromStmt(stmt *sqlite.Stmt) (*db.OtpRecord, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	expires, err := db.TimeParse(stmt.GetText("expires"))
	if err != nil {
		return nil, fmt.Errorf("error parsing expires time: %w", err)
	}

	return &db.OtpRecord{
		Email:   stmt.GetText("email"),
		Code:    stmt.GetText("code"),
		Kind:    stmt.GetText("kind"),
		Payload: json.RawMessage(stmt.GetText("payload")),
		Created: created,
		Expires: expires,
	}, nil
}

// IssueOtp replaces whatever record the email had with the new one. Delete
// and insert run in one transaction, so a resend always supersedes the old
// code instead of coexisting with it.
func (d *Db) IssueOtp(rec db.OtpRecord) error {
	if rec.Email == "" || rec.Code == "" || rec.Kind == "" {
		return db.ErrMissingFields
	}

	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	payload := rec.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	if err := issueOtpTx(conn, rec, payload); err != nil {
		return fmt.Errorf("failed to issue otp: %w", err)
	}
	return nil
}

func issueOtpTx(conn *sqlite.Conn, rec db.OtpRecord, payload json.RawMessage) (err error) {
	defer sqlitex.Save(conn)(&err)

	err = sqlitex.Execute(conn,
		`DELETE FROM otps WHERE email = ?`,
		&sqlitex.ExecOptions{Args: []interface{}{rec.Email}})
	if err != nil {
		return err
	}
	return sqlitex.Execute(conn,
		`INSERT INTO otps (email, code, kind, payload, created, expires)
		VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				rec.Email,
				rec.Code,
				rec.Kind,
				string(payload),
				db.TimeFormat(rec.Created),
				db.TimeFormat(rec.Expires),
			},
		})
}

// ConsumeOtp atomically claims the record matching (email, code). Expired
// rows are treated exactly like absent ones; the caller learns only
// ErrOtpNotFound either way. The DELETE ... RETURNING makes the claim
// single-winner under concurrent submissions of the same code.
func (d *Db) ConsumeOtp(email, code string, now time.Time) (*db.OtpRecord, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var rec *db.OtpRecord
	err = sqlitex.Execute(conn,
		`DELETE FROM otps WHERE email = ? AND code = ?
		RETURNING email, code, kind, payload, created, expires`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				rec, err = newOtpFromStmt(stmt)
				return err
			},
			Args: []interface{}{email, code},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}

	if rec == nil {
		return nil, db.ErrOtpNotFound
	}
	if !rec.Expires.After(now) {
		// The row is already gone; an expired code must not be replayable.
		return nil, db.ErrOtpNotFound
	}

	return rec, nil
}

// LatestOtp returns the live record for the email, nil if none or expired.
func (d *Db) LatestOtp(email string, now time.Time) (*db.OtpRecord, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var rec *db.OtpRecord
	err = sqlitex.Execute(conn,
		`SELECT email, code, kind, payload, created, expires
		FROM otps WHERE email = ? AND expires > ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				rec, err = newOtpFromStmt(stmt)
				return err
			},
			Args: []interface{}{email, db.TimeFormat(now)},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query otp: %w", err)
	}

	return rec, nil
}

// DeleteExpiredOtps removes records past their TTL and reports the count.
// Correctness does not depend on this; ConsumeOtp enforces expiry on read.
func (d *Db) DeleteExpiredOtps(now time.Time) (int, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return 0, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM otps WHERE expires <= ?`,
		&sqlitex.ExecOptions{Args: []interface{}{db.TimeFormat(now)}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}

	return conn.Changes(), nil
}
