package db

import (
	"context"
	"database/sql"
)

// User はusersテーブルの1行を表す。
type User struct {
	// ID はユーザーの一意識別子。
	ID string
	// Email はメールアドレス（一意）。
	Email string
	// Name は氏名。
	Name string
	// Designation は役職名。
	Designation string
	// Role はロール（employee/hr/admin）。
	Role string
	// Salary は月給（ドル）。支払い時に最小通貨単位へ変換する。
	Salary float64
	// Verified はHRによる確認済みフラグ。
	Verified bool
	// Status は在籍状態（active/fired）。
	Status string
	// PasswordHash はbcryptハッシュ。
	PasswordHash string
	// CreatedAt は作成日時。
	CreatedAt string
}

// userColumns はSELECTで取得する列の並び。scanUserと同期すること。
const userColumns = `id, email, name, designation, role, salary, verified, status, password_hash, created_at`

// scanUser は1行をUserに読み取る。
func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Designation, &u.Role,
		&u.Salary, &u.Verified, &u.Status, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	ID           string
	Email        string
	Name         string
	Designation  string
	Role         string
	Salary       float64
	Verified     bool
	Status       string
	PasswordHash string
}

// CreateUser はユーザーを作成する。
// メールアドレスの重複は一意制約違反のエラーになる。
func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, designation, role, salary, verified, status, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Name, p.Designation, p.Role, p.Salary, p.Verified, p.Status, p.PasswordHash)
	return err
}

// GetUserByEmail はメールアドレスでユーザーを取得する。
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// GetUserByID はIDでユーザーを取得する。
func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// ListUsersByRole は指定ロールのユーザー一覧を作成日時順に取得する。
func (q *Queries) ListUsersByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at`, role)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListVerifiedUsers は確認済みの非管理者ユーザー一覧を取得する。
func (q *Queries) ListVerifiedUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE verified = 1 AND role != ? ORDER BY created_at`,
		RoleAdmin)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// collectUsers は複数行をUserスライスに読み取る。
func collectUsers(rows *sql.Rows) ([]User, error) {
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Designation, &u.Role,
			&u.Salary, &u.Verified, &u.Status, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole はユーザーのロールを更新する。
// 対象が存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) UpdateUserRole(ctx context.Context, id, role string) error {
	return q.execOne(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
}

// UpdateUserStatus はユーザーの在籍状態を更新する。
func (q *Queries) UpdateUserStatus(ctx context.Context, id, status string) error {
	return q.execOne(ctx, `UPDATE users SET status = ? WHERE id = ?`, status, id)
}

// UpdateUserSalary はユーザーの月給を更新する。
func (q *Queries) UpdateUserSalary(ctx context.Context, id string, salary float64) error {
	return q.execOne(ctx, `UPDATE users SET salary = ? WHERE id = ?`, salary, id)
}

// SetUserVerified はユーザーの確認済みフラグを設定する。
func (q *Queries) SetUserVerified(ctx context.Context, id string, verified bool) error {
	return q.execOne(ctx, `UPDATE users SET verified = ? WHERE id = ?`, verified, id)
}

// ActiveRole は在籍中ユーザーの現在のロールを返す。
// pkg/middlewareのRoleDirectoryを実装する。ユーザーが存在しない場合は
// sql.ErrNoRows、解雇済みの場合はErrInactiveを返す。
func (q *Queries) ActiveRole(ctx context.Context, email string) (string, error) {
	var role, status string
	err := q.db.QueryRowContext(ctx,
		`SELECT role, status FROM users WHERE email = ?`, email).Scan(&role, &status)
	if err != nil {
		return "", err
	}
	if status != StatusActive {
		return "", ErrInactive
	}
	return role, nil
}

// execOne は更新系クエリを実行し、対象行が無い場合にsql.ErrNoRowsを返す。
func (q *Queries) execOne(ctx context.Context, query string, args ...any) error {
	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
