package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizwise-service/internal/app"
	"quizwise-service/internal/infra/generator"
	pgarchive "quizwise-service/internal/infra/postgres"
	pgmigrations "quizwise-service/internal/infra/postgres/migrations"
	infraredis "quizwise-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	generatorServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate-topic-quiz" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"generationTime": 1200,
			"questions": []map[string]any{
				{
					"question":   "Which option is right?",
					"type":       "mcq",
					"difficulty": "medium",
					"topic":      "General",
					"options":    []string{"A", "B", "C", "D"},
					"answer":     "B",
				},
				{
					"question":   "Capital of France?",
					"type":       "short_answer",
					"difficulty": "hard",
					"topic":      "Geography",
					"answer":     "Paris",
				},
			},
		})
	}))
	defer generatorServer.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	archive := pgarchive.NewResultArchive(pool)
	service := app.NewQuizService(sessionStore, generator.NewClient(generatorServer.URL, 5*time.Second), archive)

	started, err := service.StartTopicQuiz(ctx, "World Capitals", 2)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if len(started.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(started.Questions))
	}

	if _, err := service.SaveAnswer(ctx, started.SessionID, 0, "B"); err != nil {
		t.Fatalf("answer 0: %v", err)
	}
	if _, err := service.SaveAnswer(ctx, started.SessionID, 1, "paris"); err != nil {
		t.Fatalf("answer 1: %v", err)
	}

	report, err := service.Submit(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.Result.Score != 2 || report.Result.Percentage != 100 {
		t.Fatalf("expected perfect score, got %+v", report.Result)
	}
	if report.Tier != "Excellent" {
		t.Fatalf("expected Excellent tier, got %q", report.Tier)
	}

	// The graded result must have landed in the archive.
	recent, err := service.RecentResults(ctx, 10)
	if err != nil {
		t.Fatalf("recent results: %v", err)
	}
	if len(recent) != 1 || recent[0].SessionID != started.SessionID {
		t.Fatalf("expected archived result for session %s, got %+v", started.SessionID, recent)
	}
	if recent[0].Result.Score != 2 {
		t.Fatalf("archived result mismatch: %+v", recent[0].Result)
	}

	var rows int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM quiz_results WHERE session_id = $1`, started.SessionID).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 archived row, got %d", rows)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
