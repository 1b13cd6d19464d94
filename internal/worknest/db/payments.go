package db

import "context"

// Payment はpaymentsテーブルの1行を表す。完了した給与支払いの監査記録であり、
// 作成後に更新・削除されることはない。(employee_id, employee_email, month, year)
// のユニークインデックスにより同一期間の二重支払いはINSERT時点で失敗する。
type Payment struct {
	// ID は支払い記録の一意識別子。
	ID string
	// RequestID は対応する給与支払いリクエストのID。
	RequestID string
	// EmployeeID は支払い対象従業員のユーザーID。
	EmployeeID string
	// EmployeeEmail は支払い対象従業員のメールアドレス。
	EmployeeEmail string
	// Amount は支払い額（最小通貨単位）。
	Amount int64
	// Currency は通貨コード（例: "usd"）。
	Currency string
	// Month は支払い対象月（1〜12）。
	Month int
	// Year は支払い対象年。
	Year int
	// ProviderReference は決済プロバイダ側の参照ID。
	ProviderReference string
	// CreatedAt は支払い日時。
	CreatedAt string
}

// paymentColumns はSELECTで取得する列の並び。
const paymentColumns = `id, request_id, employee_id, employee_email, amount, currency, month, year, provider_reference, created_at`

// CreatePaymentParams はCreatePaymentのパラメータ。
type CreatePaymentParams struct {
	ID                string
	RequestID         string
	EmployeeID        string
	EmployeeEmail     string
	Amount            int64
	Currency          string
	Month             int
	Year              int
	ProviderReference string
}

// CreatePayment は支払い記録を作成する。同一の(employee_id, employee_email,
// month, year)の記録が既に存在する場合は一意制約違反のエラーになる。
// 呼び出し側はIsUniqueViolationで判定して「支払い済み」として扱うこと。
func (q *Queries) CreatePayment(ctx context.Context, p CreatePaymentParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO payments (id, request_id, employee_id, employee_email, amount, currency, month, year, provider_reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.RequestID, p.EmployeeID, p.EmployeeEmail, p.Amount, p.Currency,
		p.Month, p.Year, p.ProviderReference)
	return err
}

// PaymentExistsParams はPaymentExistsのパラメータ。
type PaymentExistsParams struct {
	EmployeeID    string
	EmployeeEmail string
	Month         int
	Year          int
}

// PaymentExists は同一従業員・同一期間の支払い記録が既に存在するかを返す。
// 事前チェック用であり、最終的な重複防止はユニークインデックスが保証する。
func (q *Queries) PaymentExists(ctx context.Context, p PaymentExistsParams) (bool, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE employee_id = ? AND employee_email = ? AND month = ? AND year = ?`,
		p.EmployeeID, p.EmployeeEmail, p.Month, p.Year).Scan(&count)
	return count > 0, err
}

// ListPaymentsByEmail は従業員の支払い履歴を新しい順に取得する。
func (q *Queries) ListPaymentsByEmail(ctx context.Context, email string) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE employee_email = ? ORDER BY year DESC, month DESC`,
		email)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.RequestID, &p.EmployeeID, &p.EmployeeEmail,
			&p.Amount, &p.Currency, &p.Month, &p.Year, &p.ProviderReference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
