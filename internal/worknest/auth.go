package worknest

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	wndb "worknest/internal/worknest/db"
	"worknest/pkg/middleware"
)

// registerRequest はアカウント登録リクエストのJSON構造。
type registerRequest struct {
	// Name は氏名。
	Name string `json:"name" binding:"required"`
	// Email はメールアドレス。
	Email string `json:"email" binding:"required,email"`
	// Password はパスワード（6文字以上）。
	Password string `json:"password" binding:"required,min=6"`
	// Designation は役職名。
	Designation string `json:"designation"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email" binding:"required,email"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// userResponse はユーザー情報のJSONレスポンス構造。パスワードハッシュは含めない。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Name は氏名。
	Name string `json:"name"`
	// Designation は役職名。
	Designation string `json:"designation"`
	// Role はロール。
	Role string `json:"role"`
	// Salary は月給（ドル）。
	Salary float64 `json:"salary"`
	// Verified はHRによる確認済みフラグ。
	Verified bool `json:"verified"`
	// Status は在籍状態。
	Status string `json:"status"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
}

// toUserResponse はDB行をJSONレスポンスに変換する。
func toUserResponse(u wndb.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Designation: u.Designation,
		Role:        u.Role,
		Salary:      u.Salary,
		Verified:    u.Verified,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
	}
}

// handleRegister はアカウント登録を処理するハンドラを返す。
// 登録されたアカウントのロールは常にemployeeで、HRによる確認まで未確認扱いになる。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "アカウントの作成に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		userID := uuid.New().String()
		if err := s.queries.CreateUser(c.Request.Context(), wndb.CreateUserParams{
			ID:           userID,
			Email:        req.Email,
			Name:         req.Name,
			Designation:  req.Designation,
			Role:         wndb.RoleEmployee,
			Status:       wndb.StatusActive,
			PasswordHash: string(hash),
		}); err != nil {
			if wndb.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "このメールアドレスは既に登録されています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "アカウントの作成に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		created, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成したアカウントの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toUserResponse(created))
	}
}

// handleLogin はログインを処理するハンドラを返す。
// 認証に成功した場合、本人確認情報のみを含むJWTトークンを発行する。
// 解雇済みアカウントはパスワードが正しくてもログインできない。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		user, err := s.queries.GetUserByEmail(c.Request.Context(), req.Email)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが違います"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログインに失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが違います"})
			return
		}

		if user.Status != wndb.StatusActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "このアカウントは利用できません"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.ID, user.Email, s.tokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("JWT生成エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// handleGetCurrentUser は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証情報が必要です"})
			return
		}

		user, err := s.queries.GetUserByEmail(c.Request.Context(), email)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toUserResponse(user))
	}
}
