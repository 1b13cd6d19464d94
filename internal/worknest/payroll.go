package worknest

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	wndb "worknest/internal/worknest/db"
	"worknest/pkg/middleware"
	"worknest/pkg/payment"
)

// payrollRequestBody は給与支払いリクエスト作成のリクエストボディ。
type payrollRequestBody struct {
	// EmployeeEmail は支払い対象従業員のメールアドレス。
	EmployeeEmail string `json:"employee_email" binding:"required,email"`
	// Month は支払い対象月（1〜12）。
	Month int `json:"month" binding:"required,min=1,max=12"`
	// Year は支払い対象年。
	Year int `json:"year" binding:"required,min=2000,max=2100"`
}

// payrollResponse は給与支払いリクエストのJSONレスポンス構造。
type payrollResponse struct {
	// ID はリクエストの一意識別子。
	ID string `json:"id"`
	// EmployeeEmail は支払い対象従業員のメールアドレス。
	EmployeeEmail string `json:"employee_email"`
	// Amount は支払い額（ドル）。
	Amount float64 `json:"amount"`
	// Month は支払い対象月。
	Month int `json:"month"`
	// Year は支払い対象年。
	Year int `json:"year"`
	// Status はリクエスト状態（pending/paid）。
	Status string `json:"status"`
	// RequestedBy はリクエストを作成したHRのメールアドレス。
	RequestedBy string `json:"requested_by"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// PaidAt は支払い日時。未払いの場合は空。
	PaidAt string `json:"paid_at,omitempty"`
}

// toPayrollResponse はDB行をJSONレスポンスに変換する。
func toPayrollResponse(r wndb.PayrollRequest) payrollResponse {
	return payrollResponse{
		ID:            r.ID,
		EmployeeEmail: r.EmployeeEmail,
		Amount:        r.Amount,
		Month:         r.Month,
		Year:          r.Year,
		Status:        r.Status,
		RequestedBy:   r.RequestedBy,
		CreatedAt:     r.CreatedAt,
		PaidAt:        r.PaidAt.String,
	}
}

// toMinorUnits はドル建ての金額を最小通貨単位（セント）に変換する。
// 浮動小数点の誤差を吸収するため四捨五入する。
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// handleCreatePayrollRequest は給与支払いリクエストの作成を処理するハンドラを返す。
// 対象は確認済みかつ在籍中の従業員に限る。同一期間の支払い済み記録や
// 支払い待ちリクエストが既にある場合は409を返す。
func (s *Server) handleCreatePayrollRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payrollRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		employee, err := s.queries.GetUserByEmail(c.Request.Context(), req.EmployeeEmail)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "従業員が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "従業員の取得に失敗しました"})
			log.Printf("従業員取得エラー: %v", err)
			return
		}

		if employee.Role != wndb.RoleEmployee || employee.Status != wndb.StatusActive {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "この従業員には給与支払いをリクエストできません"})
			return
		}
		if !employee.Verified {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "確認済みでない従業員には給与支払いをリクエストできません"})
			return
		}
		if employee.Salary <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "給与が設定されていません"})
			return
		}

		paid, err := s.queries.PaymentExists(c.Request.Context(), wndb.PaymentExistsParams{
			EmployeeID:    employee.ID,
			EmployeeEmail: employee.Email,
			Month:         req.Month,
			Year:          req.Year,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "支払い記録の確認に失敗しました"})
			log.Printf("支払い記録確認エラー: %v", err)
			return
		}
		if paid {
			c.JSON(http.StatusConflict, gin.H{"error": "この期間の給与は既に支払い済みです"})
			return
		}

		pending, err := s.queries.PendingRequestExists(c.Request.Context(), wndb.PendingRequestExistsParams{
			EmployeeEmail: employee.Email,
			Month:         req.Month,
			Year:          req.Year,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リクエストの確認に失敗しました"})
			log.Printf("支払い待ちリクエスト確認エラー: %v", err)
			return
		}
		if pending {
			c.JSON(http.StatusConflict, gin.H{"error": "この期間の支払いリクエストは既に存在します"})
			return
		}

		id := uuid.NewString()
		if err := s.queries.CreatePayrollRequest(c.Request.Context(), wndb.CreatePayrollRequestParams{
			ID:            id,
			EmployeeID:    employee.ID,
			EmployeeEmail: employee.Email,
			Amount:        employee.Salary,
			Month:         req.Month,
			Year:          req.Year,
			RequestedBy:   middleware.GetEmail(c),
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リクエストの作成に失敗しました"})
			log.Printf("給与支払いリクエスト作成エラー: %v", err)
			return
		}

		s.recordAudit(c, wndb.AuditActionPayrollRequested, employee.Email,
			fmt.Sprintf("month=%d, year=%d, amount=%.2f", req.Month, req.Year, employee.Salary))

		created, err := s.queries.GetPayrollRequestByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リクエストの取得に失敗しました"})
			log.Printf("給与支払いリクエスト取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toPayrollResponse(created))
	}
}

// handleListPendingPayroll は支払い待ちリクエスト一覧の取得を処理するハンドラを返す。
func (s *Server) handleListPendingPayroll() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := s.queries.ListPayrollRequestsByStatus(c.Request.Context(), wndb.RequestPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "リクエスト一覧の取得に失敗しました"})
			log.Printf("給与支払いリクエスト一覧取得エラー: %v", err)
			return
		}

		responses := make([]payrollResponse, 0, len(requests))
		for _, r := range requests {
			responses = append(responses, toPayrollResponse(r))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleExecutePayment は給与支払いの実行を処理するハンドラを返す。
//
// 支払いは次の順で進む。(1) 支払い待ちリクエストの取得と金額の検証、
// (2) 同一期間の支払い記録の事前チェック、(3) 決済プロバイダへの決済作成、
// (4) 支払い記録のINSERT、(5) リクエストの支払い済み化。
// (4)は(employee_id, employee_email, month, year)のユニークインデックスに
// 守られているため、同時実行でも同一期間の支払いは必ず1件しか成功しない。
func (s *Server) handleExecutePayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")

		req, err := s.queries.GetPayrollRequestByID(c.Request.Context(), requestID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "支払いリクエストが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "支払いリクエストの取得に失敗しました"})
			log.Printf("給与支払いリクエスト取得エラー: %v", err)
			return
		}
		if req.Status != wndb.RequestPending {
			c.JSON(http.StatusConflict, gin.H{"error": "この給与は既に支払い済みです", "already_paid": true})
			return
		}

		amount := toMinorUnits(req.Amount)
		if amount <= 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "支払い額が不正です"})
			return
		}

		exists, err := s.queries.PaymentExists(c.Request.Context(), wndb.PaymentExistsParams{
			EmployeeID:    req.EmployeeID,
			EmployeeEmail: req.EmployeeEmail,
			Month:         req.Month,
			Year:          req.Year,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "支払い記録の確認に失敗しました"})
			log.Printf("支払い記録確認エラー: %v", err)
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "この給与は既に支払い済みです", "already_paid": true})
			return
		}

		intent, err := s.payments.CreateIntent(c.Request.Context(), amount, "usd", map[string]string{
			"employee_email": req.EmployeeEmail,
			"month":          fmt.Sprintf("%d", req.Month),
			"year":           fmt.Sprintf("%d", req.Year),
		})
		if errors.Is(err, payment.ErrProvider) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "決済プロバイダでエラーが発生しました"})
			log.Printf("決済作成エラー: request=%s, error=%v", requestID, err)
			return
		}
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "支払い額が不正です"})
			return
		}

		if err := s.queries.CreatePayment(c.Request.Context(), wndb.CreatePaymentParams{
			ID:                uuid.NewString(),
			RequestID:         req.ID,
			EmployeeID:        req.EmployeeID,
			EmployeeEmail:     req.EmployeeEmail,
			Amount:            amount,
			Currency:          "usd",
			Month:             req.Month,
			Year:              req.Year,
			ProviderReference: intent.ID,
		}); err != nil {
			if wndb.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "この給与は既に支払い済みです", "already_paid": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "支払い記録の作成に失敗しました"})
			log.Printf("支払い記録作成エラー: request=%s, provider=%s, error=%v", requestID, intent.ID, err)
			return
		}

		if err := s.queries.MarkPayrollRequestPaid(c.Request.Context(), requestID); err != nil {
			// 支払い記録は既にあるため、リクエスト状態の更新失敗はログのみ。
			log.Printf("支払いリクエスト更新エラー: request=%s, error=%v", requestID, err)
		}

		s.recordAudit(c, wndb.AuditActionPaymentExecuted, req.EmployeeEmail,
			fmt.Sprintf("month=%d, year=%d, amount=%d, reference=%s", req.Month, req.Year, amount, intent.ID))

		c.JSON(http.StatusOK, gin.H{
			"request_id":    requestID,
			"amount":        amount,
			"currency":      "usd",
			"reference":     intent.ID,
			"client_secret": intent.ClientSecret,
			"paid_at":       time.Now().UTC().Format(time.RFC3339),
		})
	}
}
