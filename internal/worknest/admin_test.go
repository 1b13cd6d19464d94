package worknest

import (
	"net/http"
	"testing"

	wndb "worknest/internal/worknest/db"
)

// TestHandleChangeRole はロール変更ハンドラのテスト。
func TestHandleChangeRole(t *testing.T) {
	t.Parallel()

	t.Run("従業員をHRに昇格できる", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com", Verified: true})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/role", adminToken,
			map[string]string{"role": wndb.RoleHR})

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}
		if result := parseJSON(t, w); result["role"] != wndb.RoleHR {
			t.Errorf("role: got %v, want %v", result["role"], wndb.RoleHR)
		}
	})

	t.Run("昇格後は発行済みトークンのままHRのAPIを呼べる", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "alice@example.com", Verified: true})
		empToken := tokenFor(t, empID, "alice@example.com")

		// 昇格前はHRのAPIにアクセスできない
		if w := doRequest(s, http.MethodGet, "/api/v1/hr/employees", empToken, nil); w.Code != http.StatusForbidden {
			t.Fatalf("昇格前のステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
		}

		if w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/role", adminToken,
			map[string]string{"role": wndb.RoleHR}); w.Code != http.StatusOK {
			t.Fatalf("昇格に失敗: %d", w.Code)
		}

		// ロールはリクエストごとにDBから取り直すため、古いトークンでも昇格が反映される
		if w := doRequest(s, http.MethodGet, "/api/v1/hr/employees", empToken, nil); w.Code != http.StatusOK {
			t.Errorf("昇格後のステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("HRへの昇格以外のロール変更はできない", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com"})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/role", adminToken,
			map[string]string{"role": wndb.RoleAdmin})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("HRロールのユーザーは再昇格できない", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		hrID := seedUser(t, s, seedUserParams{Email: "hr@example.com", Role: wndb.RoleHR})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+hrID+"/role", adminToken,
			map[string]string{"role": wndb.RoleHR})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("存在しない従業員の場合はNotFound", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/no-such-id/role", adminToken,
			map[string]string{"role": wndb.RoleHR})
		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("employeeロールではアクセスできない", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com"})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/role",
			tokenFor(t, empID, "emp@example.com"), map[string]string{"role": wndb.RoleHR})
		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
		}
	})
}

// TestHandleFireEmployee は解雇ハンドラのテスト。
func TestHandleFireEmployee(t *testing.T) {
	t.Parallel()

	t.Run("従業員を解雇すると既存トークンが即座に無効になる", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com"})
		empToken := tokenFor(t, empID, "emp@example.com")

		// 解雇前は作業記録にアクセスできる
		if w := doRequest(s, http.MethodGet, "/api/v1/worksheets", empToken, nil); w.Code != http.StatusOK {
			t.Fatalf("解雇前のステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/fire", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		// トークンの有効期限が残っていてもロール必須のAPIは拒否される
		if w := doRequest(s, http.MethodGet, "/api/v1/worksheets", empToken, nil); w.Code != http.StatusForbidden {
			t.Errorf("解雇後のステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("管理者は解雇できない", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		otherAdminID := seedUser(t, s, seedUserParams{Email: "other@example.com", Role: wndb.RoleAdmin})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+otherAdminID+"/fire", adminToken, nil)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("解雇済みの従業員を再度解雇するとConflict", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "fired@example.com", Status: wndb.StatusFired})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/fire", adminToken, nil)
		if w.Code != http.StatusConflict {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusConflict)
		}
	})
}

// TestHandleChangeSalary は給与変更ハンドラのテスト。
func TestHandleChangeSalary(t *testing.T) {
	t.Parallel()

	t.Run("給与を増額できる", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com", Salary: 4000})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/salary", adminToken,
			map[string]any{"salary": 4500.50})

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}
		if result := parseJSON(t, w); result["salary"] != 4500.50 {
			t.Errorf("salary: got %v, want 4500.50", result["salary"])
		}
	})

	t.Run("給与の減額はできない", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com", Salary: 4000})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/salary", adminToken,
			map[string]any{"salary": 3000})
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("給与が0以下の場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com", Salary: 4000})

		w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/salary", adminToken,
			map[string]any{"salary": -100})
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestHandleAdminListEmployees は確認済みユーザー一覧取得のテスト。
func TestHandleAdminListEmployees(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	adminToken := seedAdmin(t, s, "boss@example.com")
	seedUser(t, s, seedUserParams{Email: "verified@example.com", Verified: true})
	seedUser(t, s, seedUserParams{Email: "unverified@example.com"})
	seedUser(t, s, seedUserParams{Email: "hr@example.com", Role: wndb.RoleHR, Verified: true})

	w := doRequest(s, http.MethodGet, "/api/v1/admin/employees", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	result := parseJSONArray(t, w)
	emails := make(map[string]bool, len(result))
	for _, u := range result {
		emails[u["email"].(string)] = true
	}
	if !emails["verified@example.com"] || !emails["hr@example.com"] {
		t.Errorf("確認済みユーザーが一覧に含まれていません: %v", emails)
	}
	if emails["unverified@example.com"] {
		t.Error("未確認ユーザーが一覧に含まれています")
	}
	if emails["boss@example.com"] {
		t.Error("管理者が一覧に含まれています")
	}
}

// TestHandleListAuditLogs は監査ログ一覧取得のテスト。
func TestHandleListAuditLogs(t *testing.T) {
	t.Parallel()

	t.Run("管理操作が監査ログに記録される", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")
		empID := seedUser(t, s, seedUserParams{Email: "emp@example.com", Salary: 4000})

		if w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/salary", adminToken,
			map[string]any{"salary": 5000}); w.Code != http.StatusOK {
			t.Fatalf("給与変更に失敗: %d", w.Code)
		}
		if w := doRequest(s, http.MethodPatch, "/api/v1/admin/employees/"+empID+"/fire", adminToken, nil); w.Code != http.StatusOK {
			t.Fatalf("解雇に失敗: %d", w.Code)
		}

		w := doRequest(s, http.MethodGet, "/api/v1/admin/audit", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		result := parseJSONArray(t, w)
		if len(result) != 2 {
			t.Fatalf("監査ログの件数: got %d, want 2, body=%s", len(result), w.Body.String())
		}

		actions := make(map[string]bool, len(result))
		for _, l := range result {
			actions[l["action"].(string)] = true
			if l["actor_email"] != "boss@example.com" {
				t.Errorf("actor_email: got %v, want boss@example.com", l["actor_email"])
			}
			if l["target"] != "emp@example.com" {
				t.Errorf("target: got %v, want emp@example.com", l["target"])
			}
		}
		if !actions[wndb.AuditActionSalaryChanged] || !actions[wndb.AuditActionFired] {
			t.Errorf("アクションが記録されていません: %v", actions)
		}
	})

	t.Run("limitが不正な場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		s := setupTestServer(t)
		adminToken := seedAdmin(t, s, "boss@example.com")

		w := doRequest(s, http.MethodGet, "/api/v1/admin/audit?limit=0", adminToken, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
