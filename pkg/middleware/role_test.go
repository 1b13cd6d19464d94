package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// fakeRoleDirectory はテスト用のRoleDirectory実装。
// メールアドレスからロールへの固定マップを参照する。
type fakeRoleDirectory struct {
	roles map[string]string
}

func (d *fakeRoleDirectory) ActiveRole(_ context.Context, email string) (string, error) {
	role, ok := d.roles[email]
	if !ok {
		return "", errors.New("user not found")
	}
	return role, nil
}

// newRoleTestRouter はJWTAuth+RequireRoleを適用したテスト用ルータを生成する。
func newRoleTestRouter(dir RoleDirectory, allowed ...string) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(testSecret))
	router.Use(RequireRole(dir, allowed...))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": GetRole(c)})
	})
	return router
}

// TestRequireRole はRequireRoleミドルウェアを検証する。
func TestRequireRole(t *testing.T) {
	t.Parallel()

	t.Run("許可されたロールのユーザーがアクセスできること", func(t *testing.T) {
		t.Parallel()

		dir := &fakeRoleDirectory{roles: map[string]string{"hr@example.com": "hr"}}
		router := newRoleTestRouter(dir, "hr", "admin")

		token, err := GenerateJWT(testSecret, "user-1", "hr@example.com", 0)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["role"] != "hr" {
			t.Errorf("role = %q, want %q", body["role"], "hr")
		}
	})

	t.Run("ロールが一致しないユーザーに403が返ること", func(t *testing.T) {
		t.Parallel()

		dir := &fakeRoleDirectory{roles: map[string]string{"emp@example.com": "employee"}}
		router := newRoleTestRouter(dir, "admin")

		token, err := GenerateJWT(testSecret, "user-2", "emp@example.com", 0)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("存在しないユーザーにもロール不一致と同じ403が返ること", func(t *testing.T) {
		t.Parallel()

		dir := &fakeRoleDirectory{roles: map[string]string{"emp@example.com": "employee"}}
		router := newRoleTestRouter(dir, "admin")

		// ユーザー不存在とロール不一致が応答から区別できないこと
		tokenUnknown, err := GenerateJWT(testSecret, "user-x", "ghost@example.com", 0)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}
		tokenWrongRole, err := GenerateJWT(testSecret, "user-2", "emp@example.com", 0)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		var bodies [2]map[string]string
		for i, token := range []string{tokenUnknown, tokenWrongRole} {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
			}
			if err := json.Unmarshal(w.Body.Bytes(), &bodies[i]); err != nil {
				t.Fatalf("レスポンスボディのパースに失敗: %v", err)
			}
		}
		if bodies[0]["error"] != bodies[1]["error"] {
			t.Errorf("エラーメッセージが一致しない: %q vs %q", bodies[0]["error"], bodies[1]["error"])
		}
	})

	t.Run("ロールはトークンではなくディレクトリから毎回参照されること", func(t *testing.T) {
		t.Parallel()

		// トークン発行時点ではemployee、その後hrに昇格したシナリオ
		dir := &fakeRoleDirectory{roles: map[string]string{"alice@co": "employee"}}
		router := newRoleTestRouter(dir, "hr")

		token, err := GenerateJWT(testSecret, "alice-1", "alice@co", 0)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		// 昇格前は403
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("昇格前のステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}

		// 昇格後は同じトークンのままアクセスできる
		dir.roles["alice@co"] = "hr"

		req2 := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req2.Header.Set("Authorization", "Bearer "+token)
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, req2)
		if w2.Code != http.StatusOK {
			t.Errorf("昇格後のステータスコード = %d, want %d", w2.Code, http.StatusOK)
		}
	})

	t.Run("JWTAuthを通過していない場合に403が返ること", func(t *testing.T) {
		t.Parallel()

		dir := &fakeRoleDirectory{roles: map[string]string{}}
		router := gin.New()
		router.Use(RequireRole(dir, "admin"))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
	})
}
