package draw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestPickWinnersHandler 验证抽签接口的HTTP契约：
// count的边界值由服务层夹取，不在绑定层被拒绝。
func TestPickWinnersHandler(t *testing.T) {
	setupTestDB(t)
	gin.SetMode(gin.TestMode)

	for i := 1; i <= 2; i++ {
		seedEntrant(t, entrantID(i), december)
	}

	router := gin.New()
	router.POST("/api/admin/draw/pick", PickWinnersHandler)

	doPick := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/draw/pick", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeCandidates := func(t *testing.T, w *httptest.ResponseRecorder) []Candidate {
		t.Helper()
		var resp struct {
			Data []Candidate `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("响应解析失败: %v", err)
		}
		return resp.Data
	}

	t.Run("zero count is clamped not rejected", func(t *testing.T) {
		w := doPick(`{"month": "2024-12", "count": 0}`)
		if w.Code != http.StatusOK {
			t.Fatalf("count=0 应被夹取后正常抽签, got %d: %s", w.Code, w.Body.String())
		}
		if candidates := decodeCandidates(t, w); len(candidates) != 1 {
			t.Errorf("count=0 夹取后应抽出1人, got %d", len(candidates))
		}
	})

	t.Run("negative count is clamped not rejected", func(t *testing.T) {
		w := doPick(`{"month": "2024-12", "count": -3}`)
		if w.Code != http.StatusOK {
			t.Fatalf("count=-3 应被夹取后正常抽签, got %d: %s", w.Code, w.Body.String())
		}
		if candidates := decodeCandidates(t, w); len(candidates) != 1 {
			t.Errorf("count=-3 夹取后应抽出1人, got %d", len(candidates))
		}
	})

	t.Run("missing month is rejected", func(t *testing.T) {
		if w := doPick(`{"count": 2}`); w.Code != http.StatusBadRequest {
			t.Errorf("缺少month应返回400, got %d", w.Code)
		}
	})

	t.Run("empty month returns 400", func(t *testing.T) {
		if w := doPick(`{"month": "2024-11", "count": 2}`); w.Code != http.StatusBadRequest {
			t.Errorf("无参与记录的月份应返回400, got %d", w.Code)
		}
	})
}
