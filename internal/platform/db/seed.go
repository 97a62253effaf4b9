package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"leavedesk/internal/domain/auth"
	"leavedesk/internal/platform/config"
)

var defaultLeaveTypes = []struct {
	Name      string
	Code      string
	Frequency string
}{
	{Name: "Casual Leave", Code: "CL", Frequency: "quarterly"},
	{Name: "Earned Leave", Code: "EL", Frequency: "quarterly"},
	{Name: "Sick Leave", Code: "SL", Frequency: "quarterly"},
	{Name: "Work From Home", Code: "WFH", Frequency: "quarterly"},
}

// Seed is idempotent; it is safe to run on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	typeIDs, err := ensureLeaveTypes(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureDefaultFormat(ctx, pool, typeIDs); err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureLeaveTypes(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	typeIDs := map[string]string{}
	for _, lt := range defaultLeaveTypes {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM leave_types WHERE code = $1", lt.Code).Scan(&id)
		if err == nil {
			typeIDs[lt.Code] = id
			continue
		}

		err = pool.QueryRow(ctx,
			"INSERT INTO leave_types (name, code, frequency) VALUES ($1, $2, $3) RETURNING id",
			lt.Name, lt.Code, lt.Frequency).Scan(&id)
		if err != nil {
			return nil, err
		}
		typeIDs[lt.Code] = id
	}
	return typeIDs, nil
}

func ensureDefaultFormat(ctx context.Context, pool *pgxpool.Pool, typeIDs map[string]string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM leave_formats WHERE name = $1", "Standard").Scan(&id)
	if err == nil {
		return nil
	}

	err = pool.QueryRow(ctx,
		"INSERT INTO leave_formats (name, description) VALUES ($1, $2) RETURNING id",
		"Standard", "Default quarterly entitlement").Scan(&id)
	if err != nil {
		return err
	}

	grants := map[string][4]float64{
		"CL":  {2, 2, 2, 2},
		"EL":  {4, 4, 4, 4},
		"SL":  {1.5, 1.5, 1.5, 1.5},
		"WFH": {3, 3, 3, 3},
	}
	for code, q := range grants {
		typeID, ok := typeIDs[code]
		if !ok {
			continue
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO leave_format_grants (format_id, leave_type_id, quarter_one, quarter_two, quarter_three, quarter_four)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (format_id, leave_type_id) DO NOTHING`,
			id, typeID, q[0], q[1], q[2], q[3])
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx,
		`INSERT INTO users (first_name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		"Admin", email, hash, auth.RoleAdmin).Scan(&id)
}
