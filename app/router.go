// Package app wires the HTTP surface onto the core services
package app

import (
	"fmt"
	"time"

	"firemail/mail-api/app/mail"
	"firemail/mail-api/app/root"
	"firemail/mail-api/app/storage"
	"firemail/mail-api/app/user"
	"firemail/mail-api/db"
	"firemail/mail-api/internal"
	"firemail/mail-api/internal/accounting"
	"firemail/mail-api/internal/backup"
	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/kv"
	"firemail/mail-api/internal/mailstore"
	"firemail/mail-api/internal/service"
	"firemail/mail-api/internal/session"
	"firemail/mail-api/pkg/middleware"
	"firemail/mail-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	Router    *gin.Engine
	Deps      *internal.Deps
	Scheduler *service.BackupScheduler
}

func NewRouter() (*API, error) {
	a := &API{}

	makeLogger()

	deps, err := buildDeps()
	if err != nil {
		return nil, err
	}
	a.Deps = deps

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("userID", v))
				}

				return fields
			},
		}),
		middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: viper.GetInt("security.rate_limit"),
			Burst:             viper.GetInt("security.rate_limit") * 2,
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	auth := middleware.NewSessionMiddleware(deps.Sessions)
	admin := middleware.NewAdminMiddleware(deps.Policy)

	wrap := func(h func(*gin.Context, *internal.Deps)) gin.HandlerFunc {
		return func(c *gin.Context) { h(c, deps) }
	}

	main := router.Group("/api")
	{
		// GET /api/health		-> Liveness probe
		main.GET("/health", root.Health)

		// GET /api/config		-> Public frontend configuration
		main.GET("/config", cacheFor(60), root.AppConfig)
	}

	auths := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/register	-> Registers a new user
		auths.POST("/register", wrap(user.UserRegister))

		// POST /api/auth/login		-> Opens a session, returns the token pair
		auths.POST("/login", wrap(user.UserLogin))

		// POST /api/auth/logout	-> Revokes the presented session
		auths.POST("/logout", auth, wrap(user.UserLogout))

		// GET /api/auth/validate	-> Checks the presented session
		auths.GET("/validate", auth, wrap(user.UserValidate))

		// POST /api/auth/refresh	-> Exchanges a refresh token, single use
		auths.POST("/refresh", wrap(user.UserRefresh))

		// GET /api/auth/me		-> Returns the session's user
		auths.GET("/me", auth, wrap(user.UserFetch))
	}

	mails := main.Group("/emails", auth, middleware.BodySizeLimiter(32<<20))
	{
		// GET /api/emails		-> Lists mail with folder/label/search filters
		mails.GET("", wrap(mail.MailList))

		// GET /api/emails/:id		-> Fetches one mail with content, marks it read
		mails.GET("/:id", wrap(mail.MailFetch))

		// POST /api/emails		-> Stores a new mail, content blob first
		mails.POST("", wrap(mail.MailCreate))

		// DELETE /api/emails/:id	-> Deletes a mail, rows first then blobs
		mails.DELETE("/:id", wrap(mail.MailDelete))

		// PATCH /api/emails/:id/status	-> Flips read/starred flags
		mails.PATCH("/:id/status", wrap(mail.MailStatus))

		// PUT /api/emails/:id/move	-> Moves a mail between folders
		mails.PUT("/:id/move", wrap(mail.MailMove))

		// POST /api/emails/:id/labels	 	-> Attaches a label
		mails.POST("/:id/labels", wrap(mail.LabelAdd))

		// DELETE /api/emails/:id/labels/:label	-> Detaches a label
		mails.DELETE("/:id/labels/:label", wrap(mail.LabelRemove))
	}

	// GET /api/labels		-> Lists the user's labels with counts
	main.GET("/labels", auth, cacheForUser(30), wrap(mail.LabelList))

	// GET /api/attachments/:id	-> Serves an attachment payload
	main.GET("/attachments/:id", auth, wrap(storage.AttachmentFetch))

	stats := main.Group("/stats", auth)
	{
		// GET /api/stats		-> The user's usage estimate
		stats.GET("", cacheForUser(30), wrap(storage.StatsFetch))

		// GET /api/stats/system	-> All tenants, admin only
		stats.GET("/system", admin, wrap(storage.StatsFetchAll))
	}

	backups := main.Group("/backups", auth)
	{
		// GET /api/backups		-> Lists the user's snapshots, newest first
		backups.GET("", wrap(storage.BackupList))

		// POST /api/backups		-> Takes a snapshot of the user's mail state
		backups.POST("", wrap(storage.BackupCreate))

		// GET /api/backups/system	-> Lists system snapshots, admin only
		backups.GET("/system", admin, wrap(storage.BackupListSystem))

		// POST /api/backups/system	-> Takes a system snapshot, admin only
		backups.POST("/system", admin, wrap(storage.BackupCreateSystem))

		// POST /api/backups/restore	-> Replays a snapshot, admin only
		backups.POST("/restore", admin, wrap(storage.RestoreRun))
	}

	a.Scheduler = service.NewBackupScheduler(deps.Snapshots)
	if err := a.Scheduler.Start(); err != nil {
		return nil, err
	}

	return a, nil
}

func buildDeps() (*internal.Deps, error) {
	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	var blobStore blob.Store

	switch viper.GetString("storage.type") {
	case "s3":
		blobStore, err = blob.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}
	default:
		blobStore, err = blob.NewDisk(viper.GetString("storage.local_root"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local blob store, %w", err)
		}
	}

	var kvStore kv.Store

	switch viper.GetString("kv.type") {
	case "redis":
		kvStore, err = kv.NewRedis()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client, %w", err)
		}
	default:
		kvStore = kv.NewMemory()
	}

	registry := &backup.Registry{
		KV:   kvStore,
		Blob: blobStore,
		Cap:  viper.GetInt("backup.retention"),
	}

	return &internal.Deps{
		DB:    database,
		Blob:  blobStore,
		KV:    kvStore,
		Argon: security.New(),
		Sessions: session.NewLedger(
			kvStore,
			time.Duration(viper.GetInt("session.ttl_seconds"))*time.Second,
			time.Duration(viper.GetInt("session.refresh_ttl_seconds"))*time.Second,
		),
		Policy: &session.Policy{DB: database},
		Mail:   mailstore.New(database, blobStore),
		Accountant: &accounting.Accountant{
			DB:           database,
			BytesPerMail: viper.GetInt64("stats.bytes_per_mail"),
			StorageLimit: viper.GetInt64("stats.storage_limit"),
		},
		Snapshots: backup.NewBuilder(database, blobStore, registry),
		Registry:  registry,
		Restorer:  &backup.Restorer{DB: database, Blob: blobStore},
	}, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()

	var level zapcore.Level
	if err := level.Set(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

// cacheForUser caches responses of authenticated endpoints whose URI is the
// same for every caller. The cache key carries the bearer credential so one
// tenant is never served another tenant's body.
func cacheForUser(sec int) gin.HandlerFunc {
	return cache.Cache(store, time.Second*time.Duration(sec),
		cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{
				CacheKey: c.Request.RequestURI + "|" + c.GetHeader("Authorization"),
			}
		}),
	)
}
