package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Bt1Arena/config"
	"Bt1Arena/db"
	"Bt1Arena/logger"
	"Bt1Arena/repository"
	"Bt1Arena/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	// GORM 连接供设置仓库使用
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	// Redis 只承担缓存角色，连接失败时降级运行
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Failed to connect to Redis, running without settings cache", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
		logger.Info("Successfully connected to Redis")
	}

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	// Create necessary directories if they don't exist
	ensureDirExists(cfg.UploadDir)
	ensureDirExists(cfg.AvatarUploadDir)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	settingsRepo := repository.NewGormSettingsRepository(db.GormDB)
	avatarStore := storage.NewAvatarStore(cfg.AvatarUploadDir)

	// 初始化处理器
	apiHandler := NewAPIHandler(userRepo, settingsRepo, avatarStore, cfg)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 用户认证相关的端点
	router.HandleFunc("/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", apiHandler.LogoutHandler).Methods(http.MethodPost)

	// 个人资料相关的端点
	router.HandleFunc("/api/profile", apiHandler.SessionMiddleware(apiHandler.GetProfileHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/profile", apiHandler.SessionMiddleware(apiHandler.UpdateProfileHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/profile/avatar", apiHandler.SessionMiddleware(apiHandler.UploadAvatarHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/profile/avatar/remove", apiHandler.SessionMiddleware(apiHandler.RemoveAvatarHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/profile/avatar/select", apiHandler.SessionMiddleware(apiHandler.SelectPredefinedAvatarHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/avatars", apiHandler.ListAvatarsHandler).Methods(http.MethodGet)

	// 设置相关的端点
	router.HandleFunc("/api/settings", apiHandler.SessionMiddleware(apiHandler.GetSettingsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/settings/password", apiHandler.SessionMiddleware(apiHandler.ChangePasswordHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/settings/email", apiHandler.SessionMiddleware(apiHandler.ChangeEmailHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/settings/preferences", apiHandler.SessionMiddleware(apiHandler.UpdatePreferencesHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/settings/privacy", apiHandler.SessionMiddleware(apiHandler.UpdatePrivacyHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/settings/notifications", apiHandler.SessionMiddleware(apiHandler.UpdateNotificationsHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/settings/theme", apiHandler.SessionMiddleware(apiHandler.UpdateThemeHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/settings/delete-account", apiHandler.SessionMiddleware(apiHandler.DeleteAccountHandler)).Methods(http.MethodPost)

	// 健康检查
	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	// Static file serving
	uploadsFileServer := http.FileServer(http.Dir(cfg.UploadDir))
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadsFileServer))

	// 预设头像资源
	avatarFileServer := http.FileServer(http.Dir(cfg.AvatarAssetDir))
	router.PathPrefix("/avatars/").Handler(http.StripPrefix("/avatars/", avatarFileServer))

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("Shutting down server...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Creating directory", logger.String("path", path))
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Fatal("Failed to create directory", logger.String("path", path), logger.ErrorField(err))
		}
	} else if err != nil {
		logger.Fatal("Failed to check directory", logger.String("path", path), logger.ErrorField(err))
	}
}
