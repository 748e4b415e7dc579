package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anwen-blog/pkg/response"
)

func TestLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)

	h.Logout(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, 期望 200", w.Code)
	}
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Errorf("code = %d, 期望 200", resp.Code)
	}
	if resp.Message != "退出登录成功" {
		t.Errorf("message = %q", resp.Message)
	}
}
