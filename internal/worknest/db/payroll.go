package db

import (
	"context"
	"database/sql"
)

// PayrollRequest はpayroll_requestsテーブルの1行を表す。
// HRが作成し、管理者が支払いを実行するとpaidになる。
type PayrollRequest struct {
	// ID はリクエストの一意識別子。
	ID string
	// EmployeeID は支払い対象従業員のユーザーID。
	EmployeeID string
	// EmployeeEmail は支払い対象従業員のメールアドレス。
	EmployeeEmail string
	// Amount は支払い額（ドル）。
	Amount float64
	// Month は支払い対象月（1〜12）。
	Month int
	// Year は支払い対象年。
	Year int
	// Status はリクエスト状態（pending/paid）。
	Status string
	// RequestedBy はリクエストを作成したHRのメールアドレス。
	RequestedBy string
	// CreatedAt は作成日時。
	CreatedAt string
	// PaidAt は支払い日時。未払いの場合は空。
	PaidAt sql.NullString
}

// payrollColumns はSELECTで取得する列の並び。
const payrollColumns = `id, employee_id, employee_email, amount, month, year, status, requested_by, created_at, paid_at`

// CreatePayrollRequestParams はCreatePayrollRequestのパラメータ。
type CreatePayrollRequestParams struct {
	ID            string
	EmployeeID    string
	EmployeeEmail string
	Amount        float64
	Month         int
	Year          int
	RequestedBy   string
}

// CreatePayrollRequest は支払い待ちの給与支払いリクエストを作成する。
func (q *Queries) CreatePayrollRequest(ctx context.Context, p CreatePayrollRequestParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO payroll_requests (id, employee_id, employee_email, amount, month, year, status, requested_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.EmployeeID, p.EmployeeEmail, p.Amount, p.Month, p.Year, RequestPending, p.RequestedBy)
	return err
}

// GetPayrollRequestByID はIDで給与支払いリクエストを取得する。
func (q *Queries) GetPayrollRequestByID(ctx context.Context, id string) (PayrollRequest, error) {
	var r PayrollRequest
	err := q.db.QueryRowContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll_requests WHERE id = ?`, id).
		Scan(&r.ID, &r.EmployeeID, &r.EmployeeEmail, &r.Amount, &r.Month, &r.Year,
			&r.Status, &r.RequestedBy, &r.CreatedAt, &r.PaidAt)
	return r, err
}

// ListPayrollRequestsByStatus は指定状態のリクエスト一覧を作成日時順に取得する。
func (q *Queries) ListPayrollRequestsByStatus(ctx context.Context, status string) ([]PayrollRequest, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll_requests WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var requests []PayrollRequest
	for rows.Next() {
		var r PayrollRequest
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.EmployeeEmail, &r.Amount, &r.Month,
			&r.Year, &r.Status, &r.RequestedBy, &r.CreatedAt, &r.PaidAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// PendingRequestExistsParams はPendingRequestExistsのパラメータ。
type PendingRequestExistsParams struct {
	EmployeeEmail string
	Month         int
	Year          int
}

// PendingRequestExists は同一従業員・同一期間の支払い待ちリクエストが既に存在するかを返す。
func (q *Queries) PendingRequestExists(ctx context.Context, p PendingRequestExistsParams) (bool, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payroll_requests
		WHERE employee_email = ? AND month = ? AND year = ? AND status = ?`,
		p.EmployeeEmail, p.Month, p.Year, RequestPending).Scan(&count)
	return count > 0, err
}

// MarkPayrollRequestPaid は支払い待ちリクエストを支払い済みにする。
// 対象が存在しないか既に支払い済みの場合はsql.ErrNoRowsを返す。
func (q *Queries) MarkPayrollRequestPaid(ctx context.Context, id string) error {
	return q.execOne(ctx, `
		UPDATE payroll_requests SET status = ?, paid_at = datetime('now')
		WHERE id = ? AND status = ?`,
		RequestPaid, id, RequestPending)
}
