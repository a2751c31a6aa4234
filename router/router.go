package router

import (
	"net/http"
	"time"

	"github.com/JerryLinyx/newsdigest/controllers"
	"github.com/JerryLinyx/newsdigest/middlewares"
	"github.com/JerryLinyx/newsdigest/templates"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries the handlers InitRouter wires. Auth and Digest may be nil;
// their routes are then not registered.
type Deps struct {
	Title           string
	FrontendOrigins []string
	JWTSecret       string
	Health          gin.HandlerFunc
	News            *controllers.NewsController
	Auth            *controllers.AuthController
	Digest          *controllers.DigestController
	ArchiveEnabled  bool
}

func InitRouter(deps Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal server error",
		})
	}))

	tmpl, err := templates.Parse()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	allowedOrigins := deps.FrontendOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	allowCreds := true
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		allowCreds = false
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", deps.News.Dashboard(deps.Title))

	// Public health endpoint for liveness/readiness checks
	r.GET("/api/health", deps.Health)

	api := r.Group("/api")
	{
		api.GET("/news", deps.News.GetNews)
		api.GET("/top-news", deps.News.GetTopNews)
	}

	if deps.Auth == nil {
		return r, nil
	}

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", deps.Auth.Login)
	}

	if deps.Digest == nil {
		return r, nil
	}
	protected := r.Group("/api")
	protected.Use(middlewares.AuthMiddleware(deps.JWTSecret))
	{
		protected.POST("/digest/send", deps.Digest.Send)
		if deps.ArchiveEnabled {
			protected.GET("/digests", deps.Digest.ListRuns)
			protected.GET("/digests/:run_id", deps.Digest.GetRun)
		}
	}

	return r, nil
}
