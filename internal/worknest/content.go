package worknest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	wndb "worknest/internal/worknest/db"
	"worknest/pkg/middleware"
)

// serviceRequest はサービス紹介作成のリクエストボディ。
type serviceRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}

// testimonialRequest は利用者の声作成のリクエストボディ。
type testimonialRequest struct {
	Name    string `json:"name" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Message string `json:"message" binding:"required"`
}

// featureRequest は機能紹介作成のリクエストボディ。
type featureRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Icon        string `json:"icon" binding:"required"`
}

// handleListServices はサービス紹介一覧の取得を処理するハンドラを返す。認証不要。
func (s *Server) handleListServices() gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := s.queries.ListServices(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "サービス一覧の取得に失敗しました"})
			log.Printf("サービス一覧取得エラー: %v", err)
			return
		}

		responses := make([]gin.H, 0, len(services))
		for _, sv := range services {
			responses = append(responses, gin.H{
				"id":          sv.ID,
				"title":       sv.Title,
				"description": sv.Description,
				"price":       sv.Price,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleListTestimonials は利用者の声一覧の取得を処理するハンドラを返す。認証不要。
func (s *Server) handleListTestimonials() gin.HandlerFunc {
	return func(c *gin.Context) {
		testimonials, err := s.queries.ListTestimonials(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "利用者の声一覧の取得に失敗しました"})
			log.Printf("利用者の声一覧取得エラー: %v", err)
			return
		}

		responses := make([]gin.H, 0, len(testimonials))
		for _, t := range testimonials {
			responses = append(responses, gin.H{
				"id":         t.ID,
				"name":       t.Name,
				"rating":     t.Rating,
				"message":    t.Message,
				"created_at": t.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleListFeatures は機能紹介一覧の取得を処理するハンドラを返す。認証不要。
func (s *Server) handleListFeatures() gin.HandlerFunc {
	return func(c *gin.Context) {
		features, err := s.queries.ListFeatures(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "機能一覧の取得に失敗しました"})
			log.Printf("機能一覧取得エラー: %v", err)
			return
		}

		responses := make([]gin.H, 0, len(features))
		for _, f := range features {
			responses = append(responses, gin.H{
				"id":          f.ID,
				"title":       f.Title,
				"description": f.Description,
				"icon":        f.Icon,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleCreateTestimonial は利用者の声の投稿を処理するハンドラを返す。
// 投稿者のメールアドレスはトークンから取得する。
func (s *Server) handleCreateTestimonial() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req testimonialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		id := uuid.NewString()
		if err := s.queries.CreateTestimonial(c.Request.Context(), wndb.CreateTestimonialParams{
			ID:      id,
			Email:   middleware.GetEmail(c),
			Name:    req.Name,
			Rating:  req.Rating,
			Message: req.Message,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "利用者の声の投稿に失敗しました"})
			log.Printf("利用者の声投稿エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// handleCreateService はサービス紹介の作成を処理するハンドラを返す。
func (s *Server) handleCreateService() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req serviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		id := uuid.NewString()
		if err := s.queries.CreateService(c.Request.Context(), wndb.CreateServiceParams{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "サービスの作成に失敗しました"})
			log.Printf("サービス作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// handleCreateFeature は機能紹介の作成を処理するハンドラを返す。
func (s *Server) handleCreateFeature() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req featureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		id := uuid.NewString()
		if err := s.queries.CreateFeature(c.Request.Context(), wndb.CreateFeatureParams{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			Icon:        req.Icon,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "機能の作成に失敗しました"})
			log.Printf("機能作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}
