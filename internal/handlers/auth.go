package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cobranzas/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type loginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type userView struct {
	ID       uint            `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

// Login: POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, http.StatusBadRequest, "Datos incorrectos", err.Error())
		return
	}
	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		respondError(c, http.StatusBadRequest, "Ingrese usuario y contraseña", "")
		return
	}

	db, ok := h.db(c)
	if !ok {
		return
	}

	var user models.User
	if err := db.Where("username = ?", form.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnauthorized, "Usuario o contraseña incorrectos", "")
			return
		}
		h.serverError(c, "Error al iniciar sesión", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Usuario o contraseña incorrectos", "")
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	if err := sess.Save(); err != nil {
		h.serverError(c, "Error al iniciar sesión", err)
		return
	}

	h.log.Infof("login: %s", user.Username)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userView{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}

// Logout: POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me: GET /api/auth/me; el usuario lo carga middleware.InjectUser.
func (h *Handler) Me(c *gin.Context) {
	v, ok := c.Get("CurrentUser")
	user, isUser := v.(models.User)
	if !ok || !isUser {
		respondError(c, http.StatusUnauthorized, "No autenticado", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          userView{ID: user.ID, Username: user.Username, Role: user.Role},
		"auth_required": h.cfg != nil && h.cfg.AuthRequired,
	})
}
