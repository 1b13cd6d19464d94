package worknest

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	wndb "worknest/internal/worknest/db"
	"worknest/pkg/middleware"
)

// worksheetRequest は作業記録の作成・更新リクエストのJSON構造。
type worksheetRequest struct {
	// Task は作業内容。
	Task string `json:"task" binding:"required"`
	// Hours は作業時間。
	Hours float64 `json:"hours" binding:"required,gt=0"`
	// WorkDate は作業日（YYYY-MM-DD）。
	WorkDate string `json:"work_date" binding:"required"`
}

// worksheetResponse は作業記録のJSONレスポンス構造。
type worksheetResponse struct {
	// ID は作業記録の一意識別子。
	ID string `json:"id"`
	// EmployeeID は記録した従業員のユーザーID。
	EmployeeID string `json:"employee_id"`
	// EmployeeEmail は記録した従業員のメールアドレス。
	EmployeeEmail string `json:"employee_email"`
	// Task は作業内容。
	Task string `json:"task"`
	// Hours は作業時間。
	Hours float64 `json:"hours"`
	// WorkDate は作業日。
	WorkDate string `json:"work_date"`
	// CreatedAt は登録日時。
	CreatedAt string `json:"created_at"`
}

// toWorksheetResponse はDB行をJSONレスポンスに変換する。
func toWorksheetResponse(w wndb.Worksheet) worksheetResponse {
	return worksheetResponse{
		ID:            w.ID,
		EmployeeID:    w.EmployeeID,
		EmployeeEmail: w.EmployeeEmail,
		Task:          w.Task,
		Hours:         w.Hours,
		WorkDate:      w.WorkDate,
		CreatedAt:     w.CreatedAt,
	}
}

// validWorkDate は作業日がYYYY-MM-DD形式かを検証する。
func validWorkDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// periodFilter はクエリパラメータからmonth/yearフィルタを読み取る。
// 未指定の場合は0（フィルタなし）を返し、不正な値はエラーになる。
func periodFilter(c *gin.Context) (month, year int, err error) {
	if m := c.Query("month"); m != "" {
		month, err = strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, fmt.Errorf("monthが不正です: %q", m)
		}
	}
	if y := c.Query("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil || year < 2000 || year > 2100 {
			return 0, 0, fmt.Errorf("yearが不正です: %q", y)
		}
	}
	return month, year, nil
}

// handleCreateWorksheet は作業記録の作成を処理するハンドラを返す。
func (s *Server) handleCreateWorksheet() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req worksheetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !validWorkDate(req.WorkDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "work_dateはYYYY-MM-DD形式で指定してください"})
			return
		}

		sheetID := uuid.New().String()
		if err := s.queries.CreateWorksheet(c.Request.Context(), wndb.CreateWorksheetParams{
			ID:            sheetID,
			EmployeeID:    middleware.GetUserID(c),
			EmployeeEmail: middleware.GetEmail(c),
			Task:          req.Task,
			Hours:         req.Hours,
			WorkDate:      req.WorkDate,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作業記録の作成に失敗しました"})
			log.Printf("作業記録作成エラー: %v", err)
			return
		}

		created, err := s.queries.GetWorksheetByID(c.Request.Context(), sheetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成した作業記録の取得に失敗しました"})
			log.Printf("作業記録取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toWorksheetResponse(created))
	}
}

// handleListOwnWorksheets は自分の作業記録一覧の取得を処理するハンドラを返す。
// クエリパラメータmonth/yearで期間を絞り込める。
func (s *Server) handleListOwnWorksheets() gin.HandlerFunc {
	return func(c *gin.Context) {
		month, year, err := periodFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sheets, err := s.queries.ListWorksheets(c.Request.Context(), wndb.ListWorksheetsParams{
			EmployeeEmail: middleware.GetEmail(c),
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

// handleUpdateWorksheet は作業記録の更新を処理するハンドラを返す。
// 本人の記録のみ更新できる。
func (s *Server) handleUpdateWorksheet() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req worksheetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !validWorkDate(req.WorkDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "work_dateはYYYY-MM-DD形式で指定してください"})
			return
		}

		sheetID := c.Param("id")
		err := s.queries.UpdateWorksheet(c.Request.Context(), wndb.UpdateWorksheetParams{
			ID:            sheetID,
			EmployeeEmail: middleware.GetEmail(c),
			Task:          req.Task,
			Hours:         req.Hours,
			WorkDate:      req.WorkDate,
		})
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "作業記録が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作業記録の更新に失敗しました"})
			log.Printf("作業記録更新エラー: %v", err)
			return
		}

		updated, err := s.queries.GetWorksheetByID(c.Request.Context(), sheetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後の作業記録の取得に失敗しました"})
			log.Printf("作業記録取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toWorksheetResponse(updated))
	}
}

// handleDeleteWorksheet は作業記録の削除を処理するハンドラを返す。
// 本人の記録のみ削除できる。
func (s *Server) handleDeleteWorksheet() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.queries.DeleteWorksheet(c.Request.Context(), c.Param("id"), middleware.GetEmail(c))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "作業記録が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作業記録の削除に失敗しました"})
			log.Printf("作業記録削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "作業記録を削除しました"})
	}
}
