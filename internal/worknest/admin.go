package worknest

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	wndb "worknest/internal/worknest/db"
)

// changeRoleRequest はロール変更のリクエストボディ。
type changeRoleRequest struct {
	// Role は変更後のロール。従業員からHRへの昇格のみ許可される。
	Role string `json:"role" binding:"required"`
}

// changeSalaryRequest は給与変更のリクエストボディ。
type changeSalaryRequest struct {
	// Salary は変更後の給与（ドル）。
	Salary float64 `json:"salary" binding:"required,gt=0"`
}

// handleAdminListEmployees は確認済みユーザー一覧の取得を処理するハンドラを返す。
// 管理者自身は一覧に含めない。
func (s *Server) handleAdminListEmployees() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.queries.ListVerifiedUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー一覧の取得に失敗しました"})
			log.Printf("ユーザー一覧取得エラー: %v", err)
			return
		}

		responses := make([]userResponse, 0, len(users))
		for _, u := range users {
			responses = append(responses, toUserResponse(u))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleChangeRole は従業員のロール変更を処理するハンドラを返す。
// 許可される変更は従業員からHRへの昇格のみ。
func (s *Server) handleChangeRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		if req.Role != wndb.RoleHR {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "このロールへの変更はできません"})
			return
		}

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

		if employee.Role != wndb.RoleEmployee || employee.Status != wndb.StatusActive {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "この従業員のロールは変更できません"})
			return
		}

		if err := s.queries.UpdateUserRole(c.Request.Context(), employeeID, wndb.RoleHR); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ロールの変更に失敗しました"})
			log.Printf("ロール変更エラー: %v", err)
			return
		}

		s.recordAudit(c, wndb.AuditActionRoleChanged, employee.Email,
			fmt.Sprintf("%s -> %s", employee.Role, wndb.RoleHR))

		c.JSON(http.StatusOK, gin.H{"id": employeeID, "role": wndb.RoleHR})
	}
}

// handleFireEmployee は従業員の解雇を処理するハンドラを返す。
// 解雇された従業員は既存のトークンを持っていてもロール必須のAPIを呼べなくなる。
func (s *Server) handleFireEmployee() gin.HandlerFunc {
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

		if employee.Role == wndb.RoleAdmin {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "管理者は解雇できません"})
			return
		}
		if employee.Status == wndb.StatusFired {
			c.JSON(http.StatusConflict, gin.H{"error": "この従業員は既に解雇されています"})
			return
		}

		if err := s.queries.UpdateUserStatus(c.Request.Context(), employeeID, wndb.StatusFired); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "解雇処理に失敗しました"})
			log.Printf("解雇処理エラー: %v", err)
			return
		}

		s.recordAudit(c, wndb.AuditActionFired, employee.Email, "")

		c.JSON(http.StatusOK, gin.H{"id": employeeID, "status": wndb.StatusFired})
	}
}

// handleChangeSalary は従業員の給与変更を処理するハンドラを返す。
// 現在の給与を下回る変更は認めない。
func (s *Server) handleChangeSalary() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeSalaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

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

		if req.Salary < employee.Salary {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "給与を現在より下げることはできません"})
			return
		}

		if err := s.queries.UpdateUserSalary(c.Request.Context(), employeeID, req.Salary); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "給与の変更に失敗しました"})
			log.Printf("給与変更エラー: %v", err)
			return
		}

		s.recordAudit(c, wndb.AuditActionSalaryChanged, employee.Email,
			fmt.Sprintf("%.2f -> %.2f", employee.Salary, req.Salary))

		c.JSON(http.StatusOK, gin.H{"id": employeeID, "salary": req.Salary})
	}
}

// handleListAuditLogs は監査ログ一覧の取得を処理するハンドラを返す。
// クエリパラメータlimitで件数を指定できる（既定は100件）。
func (s *Server) handleListAuditLogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 1000 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitが不正です"})
				return
			}
			limit = n
		}

		logs, err := s.queries.ListAuditLogs(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "監査ログの取得に失敗しました"})
			log.Printf("監査ログ取得エラー: %v", err)
			return
		}

		responses := make([]gin.H, 0, len(logs))
		for _, l := range logs {
			responses = append(responses, gin.H{
				"id":          l.ID,
				"actor_email": l.ActorEmail,
				"action":      l.Action,
				"target":      l.Target,
				"detail":      l.Detail,
				"created_at":  l.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}
