package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
)

// ==================== 测试辅助 ====================

func setupUserTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.User{})
	return db
}

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db))
}

// ==================== 单元测试 ====================

func TestUserService_Register(t *testing.T) {
	db := setupUserTestDB(t)
	svc := newUserService(db)

	info, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if info.Username != "alice" || info.ID == 0 {
		t.Errorf("注册返回 = %+v", info)
	}

	// 库里存的必须是 bcrypt 散列，不能是明文
	var user model.User
	db.First(&user, info.ID)
	if user.Password == "s3cret-pass" {
		t.Error("密码以明文入库")
	}
	if !strings.HasPrefix(user.Password, "$2") {
		t.Errorf("密码格式 = %s...", user.Password[:4])
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-pass")); err != nil {
		t.Errorf("散列校验失败: %v", err)
	}
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	db := setupUserTestDB(t)
	svc := newUserService(db)

	req := &dto.RegisterRequest{Username: "alice", Password: "pw1"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "alice", Password: "pw2"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("重名注册 err = %v, want ErrUsernameExists", err)
	}
}

func TestUserService_Login(t *testing.T) {
	db := setupUserTestDB(t)
	svc := newUserService(db)

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Password: "correct-horse",
	}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.Token == "" {
		t.Error("登录成功应返回 token")
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("登录返回用户 = %+v", resp.User)
	}
}

func TestUserService_Login_UniformFailure(t *testing.T) {
	db := setupUserTestDB(t)
	svc := newUserService(db)

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "alice", Password: "correct-horse",
	}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 密码错误与用户不存在必须是同一个错误，响应不可区分
	_, wrongPw := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "alice", Password: "wrong",
	})
	_, noUser := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "nobody", Password: "whatever",
	})

	if !errors.Is(wrongPw, ErrInvalidCredentials) {
		t.Errorf("密码错误 err = %v, want ErrInvalidCredentials", wrongPw)
	}
	if !errors.Is(noUser, ErrInvalidCredentials) {
		t.Errorf("用户不存在 err = %v, want ErrInvalidCredentials", noUser)
	}
	if wrongPw.Error() != noUser.Error() {
		t.Error("两种失败的错误文案不一致")
	}
}
