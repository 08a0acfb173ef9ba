package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shareat/lucky-draw-backend/internal/platform/database"
	"gorm.io/gorm"
)

var (
	// ErrInvalidRole 表示请求中的角色值不在合法集合内
	ErrInvalidRole = errors.New("无效的角色值")
	// ErrUserNotFound 表示目标用户不存在
	ErrUserNotFound = errors.New("用户不存在")
)

// IsValidUUID 判断一个字符串是否是合法的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// EnsureUser 确保一个经过令牌验证的UUID在数据库中有对应的用户行。
// 首次见到某个subject时惰性建档，重复调用是幂等的。
func EnsureUser(uuidStr string) error {
	newUser := User{UUID: uuidStr, Role: RoleUser}
	err := database.DB.Where("uuid = ?", uuidStr).FirstOrCreate(&newUser).Error
	if err != nil {
		// 并发首次请求可能同时建档，主键冲突不是真正的错误
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("无法为用户 %s 建档: %w", uuidStr, err)
	}
	return nil
}

// IsAdmin 查询一个用户当前是否持有admin角色。
// 按设计每个请求都重新查询，后端无会话状态。
func IsAdmin(uuidStr string) (bool, error) {
	var u User
	err := database.DB.Select("role").Where("uuid = ?", uuidStr).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("查询用户角色失败: %w", err)
	}
	return u.Role == RoleAdmin, nil
}

// GetByUUID 返回一个用户的完整档案。
func GetByUUID(uuidStr string) (*User, error) {
	var u User
	err := database.DB.Where("uuid = ?", uuidStr).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetProfiles 批量查询用户档案，返回以UUID为键的映射。
// 查不到的UUID不会出现在结果里，由调用方决定如何兜底。
func GetProfiles(uuids []string) (map[string]User, error) {
	profiles := make(map[string]User, len(uuids))
	if len(uuids) == 0 {
		return profiles, nil
	}

	var users []User
	if err := database.DB.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("批量查询用户档案失败: %w", err)
	}
	for _, u := range users {
		profiles[u.UUID] = u
	}
	return profiles, nil
}

// UpdateProfile 更新用户自己的展示信息。
func UpdateProfile(uuidStr, fullName, phone string) error {
	result := database.DB.Model(&User{}).Where("uuid = ?", uuidStr).
		Updates(map[string]interface{}{"full_name": fullName, "phone": phone})
	if result.Error != nil {
		return fmt.Errorf("更新用户档案失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRole 由管理员修改一个用户的角色。
func SetRole(uuidStr, role string) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}

	result := database.DB.Model(&User{}).Where("uuid = ?", uuidStr).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("更新用户角色失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List 分页返回用户列表，供管理后台展示。
func List(page, pageSize int) ([]User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var total int64
	if err := database.DB.Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := database.DB.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// EnsureAdmins 在启动时为配置中列出的UUID建档并授予admin角色。
func EnsureAdmins(uuids []string) error {
	for _, id := range uuids {
		if !IsValidUUID(id) {
			return fmt.Errorf("配置中的管理员ID %q 不是合法UUID", id)
		}
		if err := EnsureUser(id); err != nil {
			return err
		}
		if err := SetRole(id, RoleAdmin); err != nil {
			return err
		}
	}
	return nil
}
