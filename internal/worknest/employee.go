package worknest

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	wndb "worknest/internal/worknest/db"
	"worknest/pkg/middleware"
)

// paymentResponse は支払い記録のJSONレスポンス構造。
type paymentResponse struct {
	// ID は支払い記録の一意識別子。
	ID string `json:"id"`
	// EmployeeEmail は支払い対象従業員のメールアドレス。
	EmployeeEmail string `json:"employee_email"`
	// Amount は支払い額（最小通貨単位）。
	Amount int64 `json:"amount"`
	// Currency は通貨コード。
	Currency string `json:"currency"`
	// Month は支払い対象月。
	Month int `json:"month"`
	// Year は支払い対象年。
	Year int `json:"year"`
	// ProviderReference は決済プロバイダ側の参照ID。
	ProviderReference string `json:"provider_reference"`
	// CreatedAt は支払い日時。
	CreatedAt string `json:"created_at"`
}

// toPaymentResponse はDB行をJSONレスポンスに変換する。
func toPaymentResponse(p wndb.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID,
		EmployeeEmail:     p.EmployeeEmail,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Month:             p.Month,
		Year:              p.Year,
		ProviderReference: p.ProviderReference,
		CreatedAt:         p.CreatedAt,
	}
}

// handleListEmployees は従業員一覧の取得を処理するハンドラを返す。
func (s *Server) handleListEmployees() gin.HandlerFunc {
	return func(c *gin.Context) {
		employees, err := s.queries.ListUsersByRole(c.Request.Context(), wndb.RoleEmployee)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "従業員一覧の取得に失敗しました"})
			log.Printf("従業員一覧取得エラー: %v", err)
			return
		}

		responses := make([]userResponse, 0, len(employees))
		for _, u := range employees {
			responses = append(responses, toUserResponse(u))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleGetEmployeeDetail は従業員詳細の取得を処理するハンドラを返す。
// 従業員情報に加えて支払い履歴も返す。
func (s *Server) handleGetEmployeeDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")

		employee, err := s.queries.GetUserByEmail(c.Request.Context(), email)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "従業員が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "従業員の取得に失敗しました"})
			log.Printf("従業員取得エラー: %v", err)
			return
		}

		payments, err := s.queries.ListPaymentsByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "支払い履歴の取得に失敗しました"})
			log.Printf("支払い履歴取得エラー: %v", err)
			return
		}

		paymentResponses := make([]paymentResponse, 0, len(payments))
		for _, p := range payments {
			paymentResponses = append(paymentResponses, toPaymentResponse(p))
		}

		c.JSON(http.StatusOK, gin.H{
			"employee": toUserResponse(employee),
			"payments": paymentResponses,
		})
	}
}

// handleToggleVerified は従業員の確認済みフラグの切り替えを処理するハンドラを返す。
func (s *Server) handleToggleVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.Param("id")

		employee, err := s.queries.GetUserByID(c.Request.Context(), employeeID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "従業員が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "従業員の取得に失敗しました"})
			log.Printf("従業員取得エラー: %v", err)
			return
		}

		verified := !employee.Verified
		if err := s.queries.SetUserVerified(c.Request.Context(), employeeID, verified); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "確認済みフラグの更新に失敗しました"})
			log.Printf("確認済みフラグ更新エラー: %v", err)
			return
		}

		s.recordAudit(c, wndb.AuditActionVerifiedToggled, employee.Email,
			fmt.Sprintf("verified=%t", verified))

		c.JSON(http.StatusOK, gin.H{"id": employeeID, "verified": verified})
	}
}

// handleListProgress は全従業員の作業記録の取得を処理するハンドラを返す。
// クエリパラメータemail/month/yearで絞り込める。
func (s *Server) handleListProgress() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, year, err := periodFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sheets, err := s.queries.ListWorksheets(c.Request.Context(), wndb.ListWorksheetsParams{
			EmployeeEmail: c.Query("email"),
			Month:         month,
			Year:          year,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作業記録一覧の取得に失敗しました"})
			log.Printf("作業記録一覧取得エラー: %v", err)
			return
		}

		responses := make([]worksheetResponse, 0, len(sheets))
		for _, w := range sheets {
			responses = append(responses, toWorksheetResponse(w))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// recordAudit は監査ログを記録する。
// 記録に失敗した場合はログに残すが、呼び出し元のリクエストは失敗させない。
func (s *Server) recordAudit(c *gin.Context, action, target, detail string) {
	if err := s.queries.CreateAuditLog(c.Request.Context(), wndb.CreateAuditLogParams{
		ID:         uuid.NewString(),
		ActorEmail: middleware.GetEmail(c),
		Action:     action,
		Target:     target,
		Detail:     detail,
	}); err != nil {
		log.Printf("監査ログの記録に失敗: action=%s, target=%s, error=%v", action, target, err)
	}
}
