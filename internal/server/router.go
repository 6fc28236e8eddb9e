package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cobranzas/internal/config"
	"cobranzas/internal/database"
	"cobranzas/internal/handlers"
	"cobranzas/internal/logger"
	"cobranzas/internal/middleware"
	"cobranzas/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "cobranzas_session"

func NewRouter(cfg *config.Config, provider *database.Provider, h *handlers.Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 8 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.InjectUser(provider))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)

	if cfg.AuthRequired {
		api.Use(middleware.RequireAuth())
	}

	// CLIENTES
	clientes := api.Group("/clientes")
	clientes.GET("/buscar", h.SearchClients)
	clientes.GET("/carteras/lista", h.ListPortfolios)
	clientes.GET("/campanas/lista", h.ListCampaigns)
	clientes.GET("/:id", h.GetClient)
	clientes.GET("/:id/carteras", h.ClientPortfolios)
	clientes.GET("/:id/cuentas", h.ClientAccounts)

	// ASESORES
	asesores := api.Group("/asesores")
	asesores.GET("", h.ListAdvisors)
	asesores.GET("/buscar", h.SearchAdvisors)
	asesores.GET("/:id", h.GetAdvisor)

	// ASIGNACIONES (pagos)
	asignaciones := api.Group("/asignaciones")
	asignaciones.POST("", h.CreateAssignment)
	asignaciones.GET("/cuenta/:id", h.AccountAssignments)
	asignaciones.GET("/cliente/:id", h.ClientAssignments)

	// IMPORTACIÓN
	importar := api.Group("/importar")
	importar.POST("/clientes", h.ImportClients)
	importar.POST("/asesores", h.ImportAdvisors)

	// REPORTES
	reportes := api.Group("/reportes")
	reportes.POST("/pagos", h.Payments)
	reportes.POST("/pagos/descargar", h.DownloadPayments)
	reportes.POST("/ranking", h.Ranking)
	reportes.GET("/ranking/asesores", h.Leaderboard)
	reportes.POST("/cliente-asignacion/descargar", h.DownloadClient)
	reportes.GET("/voucher/*filename", h.Voucher)

	// AUDITORÍA
	auditoria := api.Group("/auditoria")
	if cfg.AuthRequired {
		auditoria.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor))
	}
	auditoria.GET("", h.ListAuditLogs)

	r.NoRoute(spa(cfg.WebDir))

	return r
}

// spa sirve los archivos de webDir y devuelve index.html para cualquier
// otra ruta fuera de /api.
func spa(webDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ruta no encontrada", "message": c.Request.URL.Path})
			return
		}

		rel := path.Clean("/" + c.Request.URL.Path)
		file := filepath.Join(webDir, filepath.FromSlash(rel))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		index := filepath.Join(webDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ruta no encontrada", "message": c.Request.URL.Path})
			return
		}
		c.File(index)
	}
}
