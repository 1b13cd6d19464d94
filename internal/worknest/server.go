package worknest

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"worknest/internal/config"
	wndb "worknest/internal/worknest/db"
	"worknest/pkg/middleware"
	"worknest/pkg/payment"
)

// Server はWorkNest APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はクエリ実行オブジェクト。
	queries *wndb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// tokenTTL はJWTトークンの有効期限。
	tokenTTL time.Duration
	// payments は決済プロバイダへのクライアント。
	payments *payment.Client
}

// NewServer は新しいWorkNestサーバーを生成する。
// SQLiteデータベースの初期化、スキーマ適用、デフォルト管理者の作成を行う。
func NewServer(cfg *config.Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite",
		cfg.DBPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	// インメモリDBは接続ごとに別のデータベースになるため、接続を1本に固定する。
	if cfg.DBPath == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:    router,
		port:      cfg.Port,
		queries:   wndb.New(sqlDB),
		db:        sqlDB,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
		payments:  payment.New(cfg.PaymentAPIURL, cfg.PaymentSecretKey, cfg.PaymentTimeout),
	}
	s.setupRoutes()

	if err := s.ensureAdminAccount(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("デフォルト管理者の作成に失敗: %w", err)
	}

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// 保護ルートはJWTAuth（認証）→RequireRole（認可）の順に必ず通過する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（認証不要）
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
	}

	api := s.router.Group("/api/v1")

	// 公開コンテンツ（認証不要）
	api.GET("/services", s.handleListServices())
	api.GET("/testimonials", s.handleListTestimonials())
	api.GET("/features", s.handleListFeatures())

	// 認証必須のエンドポイント
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(s.jwtSecret))
	{
		authed.GET("/me", s.handleGetCurrentUser())
		authed.POST("/testimonials", s.handleCreateTestimonial())

		// 従業員の作業記録
		worksheets := authed.Group("/worksheets")
		worksheets.Use(middleware.RequireRole(s.queries, wndb.RoleEmployee))
		{
			worksheets.POST("", s.handleCreateWorksheet())
			worksheets.GET("", s.handleListOwnWorksheets())
			worksheets.PUT("/:id", s.handleUpdateWorksheet())
			worksheets.DELETE("/:id", s.handleDeleteWorksheet())
		}

		// HR向けエンドポイント
		hr := authed.Group("/hr")
		hr.Use(middleware.RequireRole(s.queries, wndb.RoleHR))
		{
			hr.GET("/employees", s.handleListEmployees())
			hr.GET("/employees/:email", s.handleGetEmployeeDetail())
			hr.PATCH("/employees/:id/verify", s.handleToggleVerified())
			hr.GET("/progress", s.handleListProgress())
			hr.POST("/payroll", s.handleCreatePayrollRequest())
		}

		// 管理者向けエンドポイント
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole(s.queries, wndb.RoleAdmin))
		{
			admin.GET("/employees", s.handleAdminListEmployees())
			admin.PATCH("/employees/:id/role", s.handleChangeRole())
			admin.PATCH("/employees/:id/fire", s.handleFireEmployee())
			admin.PATCH("/employees/:id/salary", s.handleChangeSalary())
			admin.GET("/payroll", s.handleListPendingPayroll())
			admin.POST("/payroll/:id/pay", s.handleExecutePayment())
			admin.POST("/services", s.handleCreateService())
			admin.POST("/features", s.handleCreateFeature())
			admin.GET("/audit", s.handleListAuditLogs())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "worknest"})
	})
}

// ensureAdminAccount はデフォルト管理者アカウントが存在することを保証する。
// 既に存在する場合は何もしない。
func (s *Server) ensureAdminAccount(email, password string) error {
	ctx := context.Background()

	_, err := s.queries.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("管理者アカウントの確認に失敗: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	if err := s.queries.CreateUser(ctx, wndb.CreateUserParams{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         "WorkNest Admin",
		Designation:  "Administrator",
		Role:         wndb.RoleAdmin,
		Verified:     true,
		Status:       wndb.StatusActive,
		PasswordHash: string(hash),
	}); err != nil {
		return fmt.Errorf("管理者アカウントの作成に失敗: %w", err)
	}
	return nil
}
