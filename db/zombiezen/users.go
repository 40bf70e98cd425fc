package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/orlanda/accounts/db"
)

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.User{
		ID:         stmt.GetText("id"),
		Email:      stmt.GetText("email"),
		Name:       stmt.GetText("name"),
		Password:   stmt.GetText("password"),
		Picture:    stmt.GetText("picture"),
		Provider:   stmt.GetText("provider"),
		ProviderID: stmt.GetText("provider_id"),
		Created:    created,
		Updated:    updated,
	}, nil
}

const userColumns = `id, email, name, password, picture, provider, provider_id, created, updated`

// GetUserByEmail retrieves a user by email address.
// A nil user with nil error indicates no matching record was found.
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{email},
		})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUserWithPassword inserts a new password-holding user. A duplicate
// email is surfaced as db.ErrConstraintUnique so the caller can report a
// conflict distinct from validation errors.
func (d *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	provider := user.Provider
	if provider == "" {
		provider = db.ProviderEmail
	}

	var createdUser *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, picture, provider, provider_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				createdUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				uuid.NewString(),
				user.Email,
				user.Name,
				user.Password,
				user.Picture,
				provider,
				user.ProviderID,
			},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return nil, db.ErrConstraintUnique
		}
		return nil, fmt.Errorf("user insert failed: %w", err)
	}

	return createdUser, nil
}

// CreateUserWithOauth2 inserts the user only if the email is absent. On
// conflict the existing row is returned with none of its fields modified;
// the no-op DO UPDATE exists solely so RETURNING yields the row. This is the
// atomic conditional insert that keeps two concurrent first-time logins from
// creating two rows for one email.
func (d *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var createdUser *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, picture, provider, provider_id)
		VALUES (?, ?, ?, '', ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET email = excluded.email
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				createdUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				uuid.NewString(),
				user.Email,
				user.Name,
				user.Picture,
				user.Provider,
				user.ProviderID,
			},
		})
	if err != nil {
		return nil, fmt.Errorf("oauth2 user upsert failed: %w", err)
	}

	return createdUser, nil
}

func (d *Db) UpdatePassword(userId string, newPassword string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{newPassword, userId},
		})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpgradeToProvider attaches a password to an existing password-less account
// and records the provider identity from the fresh OAuth profile. Empty
// provider fields leave the stored values untouched.
func (d *Db) UpgradeToProvider(userId, newPassword, provider, providerId, picture string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			provider = IIF(? = '', provider, ?),
			provider_id = IIF(? = '', provider_id, ?),
			picture = IIF(? = '', picture, ?),
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				newPassword,
				provider, provider,
				providerId, providerId,
				picture, picture,
				userId,
			},
		})
	if err != nil {
		return fmt.Errorf("failed to upgrade account: %w", err)
	}

	return nil
}
