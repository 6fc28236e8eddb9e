package middleware

import (
	"cobranzas/internal/database"
	"cobranzas/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// InjectUser deja el usuario de la sesión en "CurrentUser".
func InjectUser(provider *database.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uid, ok := sess.Get("user_id").(uint); ok && uid > 0 {
			if db, err := provider.Acquire(c.Request.Context()); err == nil {
				var user models.User
				if err := db.First(&user, uid).Error; err == nil {
					c.Set("CurrentUser", user)
				}
			}
		}

		c.Next()
	}
}
