package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/talent-market/internal/auth"
	"github.com/suPer8Hu/talent-market/internal/common"
	"github.com/suPer8Hu/talent-market/internal/httpapi/middleware"
	"github.com/suPer8Hu/talent-market/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minPasswordLen = 6
	tokenTTL       = 24 * time.Hour
)

type createUserReq struct {
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	UserType        string `json:"user_type"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	switch {
	case req.Email == "" || req.Password == "" || req.DisplayName == "":
		common.Fail(c, http.StatusBadRequest, 10002, "email, display_name and password required")
		return
	case len(req.Password) < minPasswordLen:
		common.Fail(c, http.StatusBadRequest, 10002, "password must be at least 6 characters")
		return
	case req.Password != req.ConfirmPassword:
		common.Fail(c, http.StatusBadRequest, 10002, "passwords do not match")
		return
	}

	role := models.ParseRole(req.UserType)
	if role == models.RoleAdmin {
		// admins are provisioned out of band
		role = models.RoleCustomer
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		UserType:     role,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create user (maybe email already exists)")
		return
	}

	token, err := auth.SignJWT(auth.SessionFor(&user), h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	h.Log.Info("user signed up", zap.Uint64("user_id", user.ID), zap.String("user_type", string(user.UserType)))

	common.OK(c, gin.H{
		"user":  user,
		"token": token,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusUnauthorized, 40103, "invalid email or password")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid email or password")
		return
	}

	token, err := auth.SignJWT(auth.SessionFor(&user), h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"user": user, "token": token})
}

func (h *Handler) Me(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, user)
}
