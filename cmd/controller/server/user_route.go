package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"station-monitor/cmd/controller/db"
	"station-monitor/cmd/controller/model"
	"station-monitor/pkg/token"
)

const userKey = "currentUser"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

func (c *Controller) login(ctx *gin.Context) {
	var req loginRequest
	if ctx.ShouldBindJSON(&req) != nil || req.Username == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "username and password are required"})
		return
	}

	var user model.User
	if err := db.MysqlClient.DB.Where("username=?", req.Username).First(&user).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, ginResponse{Status: -1, Msg: "login failed"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		ctx.JSON(http.StatusUnauthorized, ginResponse{Status: -1, Msg: "login failed"})
		return
	}

	user.Token = token.NewSessionToken()
	if err := db.MysqlClient.DB.Model(&user).Update("token", user.Token).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "login failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: loginResponse{
		Username: user.Username,
		Role:     user.Role,
		Token:    user.Token,
	}})
}

func (c *Controller) logout(ctx *gin.Context) {
	user := ctx.MustGet(userKey).(model.User)
	_ = db.MysqlClient.DB.Model(&user).Update("token", "").Error
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}

// authRequired resolves the bearer token to a user.
func (c *Controller) authRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		bearer := strings.TrimPrefix(header, "Bearer ")
		if bearer == "" || bearer == header {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ginResponse{Status: -1, Msg: "missing bearer token"})
			return
		}
		var user model.User
		if err := db.MysqlClient.DB.Where("token=?", bearer).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ginResponse{Status: -1, Msg: "invalid token"})
			return
		}
		ctx.Set(userKey, user)
		ctx.Next()
	}
}

func (c *Controller) adminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := ctx.MustGet(userKey).(model.User)
		if user.Role != model.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, ginResponse{Status: -1, Msg: "admin role required"})
			return
		}
		ctx.Next()
	}
}

func (c *Controller) listUsers(ctx *gin.Context) {
	users := make([]model.User, 0)
	if err := db.MysqlClient.DB.Order("username").Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "query failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: users})
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (c *Controller) createUser(ctx *gin.Context) {
	var req createUserRequest
	if ctx.ShouldBindJSON(&req) != nil || req.Username == "" || len(req.Password) < 8 {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "username and password (min 8 chars) are required"})
		return
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "role must in [admin, user]"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "create failed"})
		return
	}
	user := model.User{Username: req.Username, PasswordHash: string(hash), Role: req.Role}
	if err := db.MysqlClient.DB.Create(&user).Error; err != nil {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "username already exists"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success", Data: user})
}

func (c *Controller) deleteUser(ctx *gin.Context) {
	current := ctx.MustGet(userKey).(model.User)
	id := ctx.Param("id")

	var target model.User
	if err := db.MysqlClient.DB.Where("id=?", id).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, ginResponse{Status: -1, Msg: "user not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "delete failed"})
		}
		return
	}
	if target.ID == current.ID {
		ctx.JSON(http.StatusBadRequest, ginResponse{Status: -1, Msg: "cannot delete yourself"})
		return
	}
	if err := db.MysqlClient.DB.Delete(&target).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, ginResponse{Status: -1, Msg: "delete failed"})
		return
	}
	ctx.JSON(http.StatusOK, ginResponse{Status: 0, Msg: "success"})
}
