package postgres

import (
	"context"
	"database/sql"
	"time"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, COALESCE(department, ''), COALESCE(phone, ''), status, last_login, COALESCE(reset_password_token, ''), reset_password_expire, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin, resetExpire sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department,
		&u.Phone, &u.Status, &lastLogin, &u.ResetPasswordToken, &resetExpire,
		&u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if resetExpire.Valid {
		u.ResetPasswordExpire = &resetExpire.Time
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, department, phone, status, created_on, updated_on)
	          VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	u.CreatedOn = now
	u.UpdatedOn = now
	logger.DatabaseCall("INSERT", "users", "email", u.Email)
	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role,
		nullIfEmpty(u.Department), nullIfEmpty(u.Phone), u.Status, u.CreatedOn, u.UpdatedOn).Scan(&u.ID)
	return mapUniqueViolation(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_password_token = $1 AND reset_password_expire > $2`
	return scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_on DESC`
	return r.queryUsers(ctx, query)
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_on DESC`
	return r.queryUsers(ctx, query, role)
}

func (r *userRepository) ListByDepartment(ctx context.Context, department string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE department = $1 ORDER BY created_on DESC`
	return r.queryUsers(ctx, query, department)
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, email=LOWER($2), password_hash=$3, role=$4, department=$5, phone=$6,
	          status=$7, last_login=$8, reset_password_token=$9, reset_password_expire=$10, updated_on=$11
	          WHERE id=$12`
	u.UpdatedOn = time.Now()
	logger.DatabaseCall("UPDATE", "users", "userID", u.ID)
	result, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Role,
		nullIfEmpty(u.Department), nullIfEmpty(u.Phone), u.Status, u.LastLogin,
		nullIfEmpty(u.ResetPasswordToken), u.ResetPasswordExpire, u.UpdatedOn, u.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats := &domain.UserStats{}

	err := r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE status = 'active') FROM users`).
		Scan(&stats.Total, &stats.ActiveUsers)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT role, count(*) FROM users GROUP BY role ORDER BY count(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rc domain.RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, err
		}
		stats.Roles = append(stats.Roles, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	deptRows, err := r.db.QueryContext(ctx,
		`SELECT department, count(*) FROM users WHERE department IS NOT NULL GROUP BY department ORDER BY count(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var dc domain.DepartmentCount
		if err := deptRows.Scan(&dc.Department, &dc.Count); err != nil {
			return nil, err
		}
		stats.Departments = append(stats.Departments, dc)
	}
	return stats, deptRows.Err()
}

// nullIfEmpty lets optional text columns stay NULL instead of ''.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
