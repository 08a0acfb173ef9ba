package user

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"github.com/shareat/lucky-draw-backend/pkg/token"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	entrantUUID = "0190f1f0-0000-7000-8000-0000000000aa"
	adminUUID   = "0190f1f0-0000-7000-8000-0000000000bb"
)

// setupTestDB 把全局DB替换为一个该测试专用的内存SQLite库。
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}
	database.DB = db
}

// buildRouter 组装一条参与者路由和一条管理路由，行为与生产路由一致。
func buildRouter() *gin.Engine {
	router := gin.New()
	router.GET("/probe", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	router.GET("/admin/probe", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func doRequest(router *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	setupTestDB(t)
	gin.SetMode(gin.TestMode)
	token.InitSecret("middleware-test-secret")
	router := buildRouter()

	t.Run("missing token", func(t *testing.T) {
		if w := doRequest(router, "/probe", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("缺少令牌应返回401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if w := doRequest(router, "/probe", "not-a-token"); w.Code != http.StatusUnauthorized {
			t.Errorf("非法令牌应返回401, got %d", w.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := token.Issue(entrantUUID, -time.Minute)
		if err != nil {
			t.Fatalf("签发令牌失败: %v", err)
		}
		if w := doRequest(router, "/probe", expired); w.Code != http.StatusUnauthorized {
			t.Errorf("过期令牌应返回401, got %d", w.Code)
		}
	})

	t.Run("valid token passes and provisions the user", func(t *testing.T) {
		valid, err := token.Issue(entrantUUID, time.Hour)
		if err != nil {
			t.Fatalf("签发令牌失败: %v", err)
		}

		w := doRequest(router, "/probe", valid)
		if w.Code != http.StatusOK {
			t.Fatalf("有效令牌应返回200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), entrantUUID) {
			t.Errorf("上下文中的用户ID应是令牌subject: %s", w.Body.String())
		}

		// 首次请求应惰性建档
		var u User
		if err := database.DB.Where("uuid = ?", entrantUUID).First(&u).Error; err != nil {
			t.Fatalf("用户行应已建档: %v", err)
		}
		if u.Role != RoleUser {
			t.Errorf("新建用户的角色应为user, got %s", u.Role)
		}
	})
}

// TestRequireAuthProvisionFailure 验证建档失败时请求被拒绝，
// 不会带着一个不存在的用户身份继续走下游接口。
func TestRequireAuthProvisionFailure(t *testing.T) {
	setupTestDB(t)
	gin.SetMode(gin.TestMode)
	token.InitSecret("middleware-test-secret")
	router := buildRouter()

	valid, err := token.Issue(entrantUUID, time.Hour)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}

	// 删掉users表让建档必然失败
	if err := database.DB.Migrator().DropTable(&User{}); err != nil {
		t.Fatalf("删除测试表失败: %v", err)
	}

	if w := doRequest(router, "/probe", valid); w.Code != http.StatusInternalServerError {
		t.Errorf("建档失败时应返回500, got %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	setupTestDB(t)
	gin.SetMode(gin.TestMode)
	token.InitSecret("middleware-test-secret")
	router := buildRouter()

	entrantToken, err := token.Issue(entrantUUID, time.Hour)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	adminToken, err := token.Issue(adminUUID, time.Hour)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}

	if err := EnsureAdmins([]string{adminUUID}); err != nil {
		t.Fatalf("初始化管理员失败: %v", err)
	}

	t.Run("non-admin is forbidden", func(t *testing.T) {
		if w := doRequest(router, "/admin/probe", entrantToken); w.Code != http.StatusForbidden {
			t.Errorf("非管理员应返回403, got %d", w.Code)
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		if w := doRequest(router, "/admin/probe", adminToken); w.Code != http.StatusOK {
			t.Errorf("管理员应返回200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("role change takes effect on the next request", func(t *testing.T) {
		// 角色逐请求查询，不存在会话缓存：降级立即生效
		if err := SetRole(adminUUID, RoleUser); err != nil {
			t.Fatalf("修改角色失败: %v", err)
		}
		if w := doRequest(router, "/admin/probe", adminToken); w.Code != http.StatusForbidden {
			t.Errorf("降级后的用户应返回403, got %d", w.Code)
		}
	})
}

func TestSetRoleValidation(t *testing.T) {
	setupTestDB(t)

	if err := EnsureUser(entrantUUID); err != nil {
		t.Fatalf("建档失败: %v", err)
	}

	if err := SetRole(entrantUUID, "superuser"); err != ErrInvalidRole {
		t.Errorf("非法角色值应返回ErrInvalidRole, got %v", err)
	}
	if err := SetRole(entrantUUID, RoleAdmin); err != nil {
		t.Errorf("合法角色值应更新成功: %v", err)
	}

	isAdmin, err := IsAdmin(entrantUUID)
	if err != nil {
		t.Fatalf("查询角色失败: %v", err)
	}
	if !isAdmin {
		t.Error("授予admin后IsAdmin应为true")
	}
}
