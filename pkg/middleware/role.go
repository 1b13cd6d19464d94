package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoleDirectory はメールアドレスから現在有効なロールを引くためのインターフェース。
// トークン発行後に昇格・解雇でロールが変わる可能性があるため、
// RequireRoleはトークンの内容ではなくこのインターフェース経由で毎回参照する。
type RoleDirectory interface {
	// ActiveRole は在籍中ユーザーの現在のロールを返す。
	// ユーザーが存在しない場合や解雇済みの場合はエラーを返す。
	ActiveRole(ctx context.Context, email string) (string, error)
}

// RequireRole は現在のロールが許可リストに含まれることを検証するGinミドルウェアを返す。
// JWTAuthの後段に適用すること。ユーザー不存在・解雇済み・ロール不一致は
// いずれも同じ403として応答し、どの条件で拒否されたかは開示しない。
func RequireRole(dir RoleDirectory, allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		email := GetEmail(c)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "この操作を行う権限がありません",
			})
			return
		}

		role, err := dir.ActiveRole(c.Request.Context(), email)
		if err != nil {
			log.Printf("ロール確認に失敗: email=%s, error=%v", email, err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "この操作を行う権限がありません",
			})
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "この操作を行う権限がありません",
			})
			return
		}

		c.Set("role", role)
		c.Next()
	}
}

// GetRole はGinコンテキストから現在のロールを取得する。
// RequireRoleミドルウェアが事前に適用されている必要がある。
func GetRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}
