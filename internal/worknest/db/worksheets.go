package db

import (
	"context"
	"database/sql"
)

// Worksheet はworksheetsテーブルの1行を表す。従業員の作業記録。
type Worksheet struct {
	// ID は作業記録の一意識別子。
	ID string
	// EmployeeID は記録した従業員のユーザーID。
	EmployeeID string
	// EmployeeEmail は記録した従業員のメールアドレス。
	EmployeeEmail string
	// Task は作業内容。
	Task string
	// Hours は作業時間。
	Hours float64
	// WorkDate は作業日（YYYY-MM-DD）。
	WorkDate string
	// CreatedAt は登録日時。
	CreatedAt string
}

// worksheetColumns はSELECTで取得する列の並び。
const worksheetColumns = `id, employee_id, employee_email, task, hours, work_date, created_at`

// CreateWorksheetParams はCreateWorksheetのパラメータ。
type CreateWorksheetParams struct {
	ID            string
	EmployeeID    string
	EmployeeEmail string
	Task          string
	Hours         float64
	WorkDate      string
}

// CreateWorksheet は作業記録を作成する。
func (q *Queries) CreateWorksheet(ctx context.Context, p CreateWorksheetParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO worksheets (id, employee_id, employee_email, task, hours, work_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.EmployeeID, p.EmployeeEmail, p.Task, p.Hours, p.WorkDate)
	return err
}

// GetWorksheetByID はIDで作業記録を取得する。
func (q *Queries) GetWorksheetByID(ctx context.Context, id string) (Worksheet, error) {
	var w Worksheet
	err := q.db.QueryRowContext(ctx,
		`SELECT `+worksheetColumns+` FROM worksheets WHERE id = ?`, id).
		Scan(&w.ID, &w.EmployeeID, &w.EmployeeEmail, &w.Task, &w.Hours, &w.WorkDate, &w.CreatedAt)
	return w, err
}

// ListWorksheetsParams はListWorksheetsのパラメータ。
// EmployeeEmailが空文字列の場合は全従業員、Month/Yearが0の場合は全期間を対象とする。
type ListWorksheetsParams struct {
	EmployeeEmail string
	Month         int
	Year          int
}

// ListWorksheets は作業記録一覧を作業日の新しい順に取得する。
func (q *Queries) ListWorksheets(ctx context.Context, p ListWorksheetsParams) ([]Worksheet, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+worksheetColumns+` FROM worksheets
		WHERE (?1 = '' OR employee_email = ?1)
		  AND (?2 = 0 OR CAST(strftime('%m', work_date) AS INTEGER) = ?2)
		  AND (?3 = 0 OR CAST(strftime('%Y', work_date) AS INTEGER) = ?3)
		ORDER BY work_date DESC, created_at DESC`,
		p.EmployeeEmail, p.Month, p.Year)
	if err != nil {
		return nil, err
	}
	return collectWorksheets(rows)
}

// collectWorksheets は複数行をWorksheetスライスに読み取る。
func collectWorksheets(rows *sql.Rows) ([]Worksheet, error) {
	defer func() { _ = rows.Close() }()

	var sheets []Worksheet
	for rows.Next() {
		var w Worksheet
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.EmployeeEmail, &w.Task,
			&w.Hours, &w.WorkDate, &w.CreatedAt); err != nil {
			return nil, err
		}
		sheets = append(sheets, w)
	}
	return sheets, rows.Err()
}

// UpdateWorksheetParams はUpdateWorksheetのパラメータ。
type UpdateWorksheetParams struct {
	ID            string
	EmployeeEmail string
	Task          string
	Hours         float64
	WorkDate      string
}

// UpdateWorksheet は作業記録を更新する。本人の記録のみ更新でき、
// 対象が存在しないか他人の記録の場合はsql.ErrNoRowsを返す。
func (q *Queries) UpdateWorksheet(ctx context.Context, p UpdateWorksheetParams) error {
	return q.execOne(ctx, `
		UPDATE worksheets SET task = ?, hours = ?, work_date = ?
		WHERE id = ? AND employee_email = ?`,
		p.Task, p.Hours, p.WorkDate, p.ID, p.EmployeeEmail)
}

// DeleteWorksheet は作業記録を削除する。本人の記録のみ削除でき、
// 対象が存在しないか他人の記録の場合はsql.ErrNoRowsを返す。
func (q *Queries) DeleteWorksheet(ctx context.Context, id, employeeEmail string) error {
	return q.execOne(ctx,
		`DELETE FROM worksheets WHERE id = ? AND employee_email = ?`, id, employeeEmail)
}
