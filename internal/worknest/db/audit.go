package db

import "context"

// 監査ログのアクション定数。
const (
	// AuditActionRoleChanged はロール変更。
	AuditActionRoleChanged = "RoleChanged"
	// AuditActionFired は解雇。
	AuditActionFired = "Fired"
	// AuditActionSalaryChanged は給与変更。
	AuditActionSalaryChanged = "SalaryChanged"
	// AuditActionVerifiedToggled は確認済みフラグの切り替え。
	AuditActionVerifiedToggled = "VerifiedToggled"
	// AuditActionPayrollRequested は給与支払いリクエストの作成。
	AuditActionPayrollRequested = "PayrollRequested"
	// AuditActionPaymentExecuted は給与支払いの実行。
	AuditActionPaymentExecuted = "PaymentExecuted"
)

// AuditLog はaudit_logsテーブルの1行を表す。管理者・HRによる変更操作の記録。
type AuditLog struct {
	// ID は監査ログの一意識別子。
	ID string
	// ActorEmail は操作を行ったユーザーのメールアドレス。
	ActorEmail string
	// Action は操作の種類。
	Action string
	// Target は操作対象（ユーザーのメールアドレス等）。
	Target string
	// Detail は操作の詳細。
	Detail string
	// CreatedAt は操作日時。
	CreatedAt string
}

// CreateAuditLogParams はCreateAuditLogのパラメータ。
type CreateAuditLogParams struct {
	ID         string
	ActorEmail string
	Action     string
	Target     string
	Detail     string
}

// CreateAuditLog は監査ログを作成する。
func (q *Queries) CreateAuditLog(ctx context.Context, p CreateAuditLogParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_email, action, target, detail) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.ActorEmail, p.Action, p.Target, p.Detail)
	return err
}

// ListAuditLogs は監査ログを新しい順に最大limit件取得する。
func (q *Queries) ListAuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, actor_email, action, target, detail, created_at FROM audit_logs
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []AuditLog
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.ActorEmail, &l.Action, &l.Target, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
