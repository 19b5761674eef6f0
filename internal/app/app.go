package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/madac4/doCreate-server/internal/cache"
	"github.com/madac4/doCreate-server/internal/config"
	"github.com/madac4/doCreate-server/internal/handler"
	"github.com/madac4/doCreate-server/internal/mail"
	"github.com/madac4/doCreate-server/internal/middleware"
	"github.com/madac4/doCreate-server/internal/repository/mongodb"
	"github.com/madac4/doCreate-server/internal/service"
	"github.com/madac4/doCreate-server/internal/storage"
	"github.com/madac4/doCreate-server/internal/token"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config   *config.Config
	mongo    *mongo.Client
	db       *mongo.Database
	sessions *cache.RedisSessionStore
	mailer   mail.Dispatcher
	avatars  storage.AvatarStore
	server   *http.Server
	logger   *slog.Logger
}

// Option переопределяет внешнюю зависимость приложения.
// Используется в тестах, чтобы не ходить в SMTP и Cloudinary.
type Option func(*App)

// WithMailer подменяет диспетчер почты
func WithMailer(mailer mail.Dispatcher) Option {
	return func(a *App) { a.mailer = mailer }
}

// WithAvatarStore подменяет хранилище аватаров
func WithAvatarStore(avatars storage.AvatarStore) Option {
	return func(a *App) { a.avatars = avatars }
}

// New создает новый экземпляр приложения
func New(cfg *config.Config, opts ...Option) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app := &App{
		config: cfg,
		logger: logger,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Подключаемся к MongoDB
	if err := a.connectMongo(ctx); err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Подключаемся к Redis (кеш сессий)
	if err := a.connectRedis(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Настраиваем HTTP сервер и роутинг
	if err := a.setupServer(); err != nil {
		return fmt.Errorf("failed to setup server: %w", err)
	}

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectMongo устанавливает подключение к MongoDB и создает индексы
func (a *App) connectMongo(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.config.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to create mongo client: %w", err)
	}

	// Проверяем подключение к БД
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	a.mongo = client
	a.db = client.Database(a.config.Mongo.Database)

	// Уникальные индексы заменяют SQL миграции
	if err := mongodb.EnsureIndexes(ctx, a.db); err != nil {
		return err
	}

	a.logger.Info("Connected to mongodb", "database", a.config.Mongo.Database)
	return nil
}

// connectRedis устанавливает подключение к кешу сессий
func (a *App) connectRedis(ctx context.Context) error {
	sessions, err := cache.New(ctx, a.config.Redis.URL)
	if err != nil {
		return err
	}

	a.sessions = sessions
	a.logger.Info("Connected to redis")
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() error {
	// Инициализируем слой репозиториев (работа с БД)
	userRepo := mongodb.NewUserRepository(a.db)
	teamRepo := mongodb.NewTeamRepository(a.db)
	invitationRepo := mongodb.NewInvitationRepository(a.db)

	// Инициализируем внешние зависимости (токены, почта, хранилище аватаров)
	tokens := token.NewManager(a.config.JWT)

	if a.mailer == nil {
		mailer, err := mail.NewSMTPDispatcher(a.config.SMTP)
		if err != nil {
			return err
		}
		a.mailer = mailer
	}

	if a.avatars == nil {
		avatars, err := storage.NewCloudinaryStore(a.config.Cloudinary)
		if err != nil {
			return err
		}
		a.avatars = avatars
	}

	// Инициализируем слой сервисов (бизнес-логика)
	authService := service.NewAuthService(userRepo, a.sessions, tokens)
	userService := service.NewUserService(
		userRepo,
		teamRepo,
		invitationRepo,
		a.sessions,
		tokens,
		a.mailer,
		a.avatars,
		a.config.Origin,
	)
	teamService := service.NewTeamService(
		teamRepo,
		userRepo,
		invitationRepo,
		a.sessions,
		tokens,
		a.mailer,
	)

	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(authService, a.config.JWT)
	userHandler := handler.NewUserHandler(userService)
	teamHandler := handler.NewTeamHandler(teamService)

	// Инициализируем гейты аутентификации и ролей команды
	authenticate := middleware.Authenticate(authService)
	teamAdmin := middleware.RequireTeamAdmin(teamRepo)
	teamMember := middleware.RequireTeamMember(teamRepo)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Публичные эндпоинты (без авторизации)
		r.Post("/registration", userHandler.Register)
		r.Post("/activate-user", userHandler.Activate)
		r.Post("/login", authHandler.Login)
		r.Get("/refresh", authHandler.Refresh)
		r.Post("/forgot-password", userHandler.ForgotPassword)
		r.Put("/reset-password", userHandler.ResetPassword)

		// Защищенные эндпоинты (требуют валидный access cookie)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			// Эндпоинты профиля
			r.Get("/logout", authHandler.Logout)
			r.Get("/me", userHandler.Me)
			r.Put("/update-user", userHandler.UpdateInfo)
			r.Put("/update-password", userHandler.UpdatePassword)
			r.Put("/update-avatar", userHandler.UpdateAvatar)

			// Эндпоинты команд
			r.Post("/create-team", teamHandler.Create)
			r.With(teamAdmin).Post("/invite-member/{id}", teamHandler.Invite)
			r.With(teamAdmin).Put("/edit-team/{id}", teamHandler.Edit)
			r.With(teamAdmin).Put("/remove-member/{id}", teamHandler.RemoveMember)
			r.With(teamAdmin).Delete("/delete-team/{id}", teamHandler.Delete)
			r.With(teamMember).Get("/get-members/{id}", teamHandler.Members)
		})
	})

	// Неизвестные маршруты отвечают в том же формате, что и ошибки
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondWithError(w, r, http.StatusNotFound,
			fmt.Sprintf("Route %s not found", r.URL.Path))
	})

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
	return nil
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключение к кешу сессий
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.logger.Error("Failed to close redis connection", "error", err)
		}
	}

	// Закрываем подключение к базе данных
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to disconnect mongodb: %w", err)
		}
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
