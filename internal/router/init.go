package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/internal/container"
	handlers "github.com/oksasatya/go-ddd-postboard/internal/interface/http"
	"github.com/oksasatya/go-ddd-postboard/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-postboard/internal/router/modules"
)

// Services are the application services behind the HTTP modules. Auth may be nil.
type Services struct {
	Users     *app.UserService
	Posts     *app.PostService
	Comments  *app.CommentService
	Snapshots *app.SnapshotService
	Auth      *app.AuthService
}

// Options tune how the modules are mounted.
type Options struct {
	Redis        *redis.Client // nil disables rate limiting
	AuthEnabled  bool
	DebugMetrics bool
	CookieDomain string
	CookieSecure bool
	Logger       *logrus.Logger
}

func buildServices() Services {
	cfg := container.GetConfig()
	st := container.GetStore()
	deps := app.Deps{
		Users:    st.Users,
		Posts:    st.Posts,
		Comments: st.Comments,
		Tx:       st.Tx,
		Cache:    container.GetViewCache(),
		Notifier: container.GetNotifier(),
		Search:   container.GetPostIndex(),
		Logger:   container.GetLogger(),
	}
	s := Services{
		Users:     app.NewUserService(deps),
		Posts:     app.NewPostService(deps, cfg.PostsDefaultLimit),
		Comments:  app.NewCommentService(deps),
		Snapshots: app.NewSnapshotService(deps, container.GetSnapshotStore()),
	}
	if cfg.AuthEnabled {
		s.Auth = app.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, container.GetJWT(), container.GetSessions(), container.GetLogger())
	}
	return s
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	Mount(r, buildServices(), Options{
		Redis:        container.GetRedis(),
		AuthEnabled:  cfg.AuthEnabled,
		DebugMetrics: cfg.DebugMetricsEnabled,
		CookieDomain: cfg.CookieDomain,
		CookieSecure: cfg.CookieSecure,
		Logger:       container.GetLogger(),
	})
}

// Mount adds every module to r.
func Mount(r *Registry, s Services, o Options) {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}

	// mutating routes: 60 req/min per client, plus the operator session when auth is on
	guard := []gin.HandlerFunc{middleware.RateLimit(o.Redis, 60, time.Minute, middleware.KeyByIP(), nil)}
	if o.AuthEnabled && s.Auth != nil {
		guard = []gin.HandlerFunc{
			middleware.Auth(s.Auth),
			middleware.RateLimit(o.Redis, 120, time.Minute, middleware.KeyByOperator(), nil),
		}
	}

	r.Add(modules.NewUsersModule(handlers.NewUserHandler(s.Users, o.Logger), guard...))
	r.Add(modules.NewPostsModule(handlers.NewPostHandler(s.Posts, o.Logger), guard...))
	r.Add(modules.NewCommentsModule(handlers.NewCommentHandler(s.Comments, o.Logger), guard...))
	r.Add(modules.NewAdminModule(handlers.NewSnapshotHandler(s.Snapshots, o.Logger), guard...))

	if o.AuthEnabled && s.Auth != nil {
		loginLimiter := middleware.RateLimit(o.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
		h := handlers.NewAuthHandler(s.Auth, o.Logger, o.CookieDomain, o.CookieSecure)
		r.Add(modules.NewAuthModule(h, loginLimiter, middleware.Auth(s.Auth)))
	}
	if o.DebugMetrics {
		r.Add(modules.NewDebugModule(middleware.RateLimit(o.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())))
	}
}
