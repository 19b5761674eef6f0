package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/madac4/doCreate-server/internal/app"
	"github.com/madac4/doCreate-server/internal/config"
	"github.com/madac4/doCreate-server/internal/domain"
	"github.com/madac4/doCreate-server/internal/mail"
)

// recordingMailer перехватывает исходящую почту вместо реального SMTP.
// Из перехваченных писем тесты достают коды активации и токены.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// LastDataTo возвращает данные шаблона последнего письма на адрес
func (m *recordingMailer) LastDataTo(t *testing.T, to string) map[string]string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			data, ok := m.sent[i].Data.(map[string]string)
			require.True(t, ok, "mail data should be a template map")
			return data
		}
	}

	t.Fatalf("no mail sent to %s", to)
	return nil
}

// stubAvatarStore подменяет облачное хранилище аватаров
type stubAvatarStore struct{}

func (s *stubAvatarStore) Upload(_ context.Context, image string) (domain.Avatar, error) {
	return domain.Avatar{
		PublicID: "test/" + image,
		URL:      "https://cdn.test.local/" + image,
	}, nil
}

func (s *stubAvatarStore) Destroy(_ context.Context, _ string) error {
	return nil
}

// TestEnvironment содержит все ресурсы необходимые для интеграционных тестов
type TestEnvironment struct {
	MongoContainer *mongodb.MongoDBContainer
	RedisContainer *tcredis.RedisContainer
	App            *app.App
	BaseURL        string
	Mailer         *recordingMailer
	ctx            context.Context
}

// SetupTestEnvironment создает и инициализирует полное тестовое окружение
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	// Запускаем MongoDB контейнер
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err, "Failed to start MongoDB container")

	mongoURI, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get mongodb connection string")

	// Запускаем Redis контейнер (кеш сессий)
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "Failed to start Redis container")

	redisURL, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get redis connection string")

	// Создаем конфигурацию для приложения
	// Используем высокий порт для тестов чтобы избежать конфликтов
	testPort := "18080"
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: testPort,
			Host: "127.0.0.1",
		},
		Mongo: config.MongoConfig{
			URI:      mongoURI,
			Database: "doCreate_test",
		},
		Redis: config.RedisConfig{
			URL: redisURL,
		},
		JWT: config.JWTConfig{
			AccessSecret:     "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			ActivationSecret: "test-activation-secret",
			ResetSecret:      "test-reset-secret",
			InvitationSecret: "test-invitation-secret",

			AccessExpiryMinutes:     5,
			RefreshExpiryDays:       7,
			ActivationExpiryMinutes: 30,
			ResetExpiryMinutes:      15,
			InvitationExpiryHours:   24,
		},
		Origin: "http://localhost:3000",
	}

	// Создаем приложение, подменяя SMTP и Cloudinary заглушками
	mailer := &recordingMailer{}
	application, err := app.New(cfg,
		app.WithMailer(mailer),
		app.WithAvatarStore(&stubAvatarStore{}),
	)
	require.NoError(t, err, "Failed to create application")

	err = application.Initialize(ctx)
	require.NoError(t, err, "Failed to initialize application")

	// Запускаем сервер в фоне
	serverStarted := make(chan bool, 1)
	go func() {
		serverStarted <- true
		if err := application.Run(); err != nil && err != http.ErrServerClosed {
			t.Logf("Server error: %v", err)
		}
	}()

	// Ждем запуска сервера
	<-serverStarted
	time.Sleep(500 * time.Millisecond)

	baseURL := fmt.Sprintf("http://%s:%s", cfg.Server.Host, testPort)

	return &TestEnvironment{
		MongoContainer: mongoContainer,
		RedisContainer: redisContainer,
		App:            application,
		BaseURL:        baseURL,
		Mailer:         mailer,
		ctx:            ctx,
	}
}

// Cleanup очищает все тестовые ресурсы
func (te *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	// Останавливаем приложение
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if te.App != nil {
		_ = te.App.Shutdown(shutdownCtx)
	}

	// Останавливаем контейнеры
	if te.RedisContainer != nil {
		_ = te.RedisContainer.Terminate(te.ctx)
	}
	if te.MongoContainer != nil {
		_ = te.MongoContainer.Terminate(te.ctx)
	}
}

// NewClient создает HTTP клиент с cookie jar: сессия живет в cookie,
// поэтому у каждого пользователя в тесте свой клиент
func (te *TestEnvironment) NewClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
	}
}

// MakeRequest вспомогательная функция для HTTP запросов в тестах
func (te *TestEnvironment) MakeRequest(t *testing.T, client *http.Client, method, path string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, te.BaseURL+path, body)
	require.NoError(t, err, "Failed to create request")

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err, "Failed to make request")

	return resp
}

// WaitForHealthCheck ждет пока приложение станет доступным
func (te *TestEnvironment) WaitForHealthCheck(t *testing.T) {
	t.Helper()

	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(te.BaseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatal("Application did not become healthy in time")
}
