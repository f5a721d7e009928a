package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Counts struct {
	Accounts  int64
	Stores    int64
	Cameras   int64
	Employees int64
	Alerts    int64
}

var requiredTables = []string{
	"console_auth.accounts", "console_auth.users", "console_auth.sessions",
	"console.stores", "console.cameras", "console.camera_rois",
	"console.employees", "console.alerts", "console.onboarding_progress",
}

// checkSchema fails when the server has not migrated yet.
func checkSchema(ctx context.Context, tx *sql.Tx) error {
	for _, t := range requiredTables {
		var reg sql.NullString
		if err := tx.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, t).Scan(&reg); err != nil {
			return fmt.Errorf("check %s: %w", t, err)
		}
		if !reg.Valid {
			return fmt.Errorf("table %s missing; start the server once to migrate", t)
		}
	}
	return nil
}

func countAll(ctx context.Context, tx *sql.Tx) (Counts, error) {
	var c Counts
	q := []struct {
		sql string
		dst *int64
	}{
		{`SELECT COUNT(*) FROM console_auth.accounts`, &c.Accounts},
		{`SELECT COUNT(*) FROM console.stores`, &c.Stores},
		{`SELECT COUNT(*) FROM console.cameras`, &c.Cameras},
		{`SELECT COUNT(*) FROM console.employees`, &c.Employees},
		{`SELECT COUNT(*) FROM console.alerts`, &c.Alerts},
	}
	for _, x := range q {
		if err := tx.QueryRowContext(ctx, x.sql).Scan(x.dst); err != nil {
			return c, err
		}
	}
	return c, nil
}

// existingAccount returns the account owned by email, or "" if none.
func existingAccount(ctx context.Context, tx *sql.Tx, email string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT account_id FROM console_auth.users WHERE lower(email) = lower($1)`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// wipeAccount removes one account and everything under it. Explicit order;
// no ON DELETE CASCADE assumed.
func wipeAccount(ctx context.Context, tx *sql.Tx, accountID string) error {
	stmts := []string{
		`DELETE FROM console.alerts WHERE account_id = $1`,
		`DELETE FROM console.employees WHERE account_id = $1`,
		`DELETE FROM console.camera_rois WHERE camera_id IN (SELECT id FROM console.cameras WHERE account_id = $1)`,
		`DELETE FROM console.cameras WHERE account_id = $1`,
		`DELETE FROM console.stores WHERE account_id = $1`,
		`DELETE FROM console.onboarding_progress WHERE account_id = $1`,
		`DELETE FROM console_auth.sessions WHERE user_id IN (SELECT user_id FROM console_auth.users WHERE account_id = $1)`,
		`DELETE FROM console_auth.users WHERE account_id = $1`,
		`DELETE FROM console_auth.accounts WHERE id = $1`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s, accountID); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
	}
	return nil
}

func insertPlan(ctx context.Context, tx *sql.Tx, p *Plan) error {
	a := p.Account
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO console_auth.accounts (id, name, plan, trial_ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Name, a.Plan, a.TrialEndsAt, a.CreatedAt); err != nil {
		return fmt.Errorf("account: %w", err)
	}
	u := p.Owner
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO console_auth.users (user_id, account_id, email, name, hashed_password, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.UserID, u.AccountID, u.Email, u.Name, u.HashedPassword, u.Role, u.CreatedAt); err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	for _, s := range p.Stores {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO console.stores (id, account_id, name, address, timezone, tags, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.AccountID, s.Name, s.Address, s.Timezone, s.Tags, s.CreatedAt, s.UpdatedAt); err != nil {
			return fmt.Errorf("store %s: %w", s.Name, err)
		}
	}
	for _, c := range p.Cameras {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO console.cameras (id, account_id, store_id, name, stream_url, status, last_seen_at, agent_version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			c.ID, c.AccountID, c.StoreID, c.Name, c.StreamURL, c.Status, c.LastSeenAt, c.AgentVersion, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("camera %s: %w", c.Name, err)
		}
	}
	for _, r := range p.ROIs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO console.camera_rois (camera_id, version, status, zones, canvas_width, canvas_height, updated_by, updated_at)
			VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8)`,
			r.CameraID, r.Version, r.Status, string(r.Zones), r.CanvasWidth, r.CanvasHeight, r.UpdatedBy, r.UpdatedAt); err != nil {
			return fmt.Errorf("roi %s: %w", r.CameraID, err)
		}
	}
	for _, e := range p.Employees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO console.employees (id, account_id, store_id, name, email, email_key, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.AccountID, e.StoreID, e.Name, e.Email, e.EmailKey, e.Role, e.CreatedAt); err != nil {
			return fmt.Errorf("employee %s: %w", e.Name, err)
		}
	}
	for _, al := range p.Alerts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO console.alerts (id, account_id, store_id, camera_id, type, severity, status, message, channels, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			al.ID, al.AccountID, al.StoreID, al.CameraID, al.Type, al.Severity, al.Status, al.Message, al.Channels, al.CreatedAt); err != nil {
			return fmt.Errorf("alert %s: %w", al.ID, err)
		}
	}
	return nil
}
