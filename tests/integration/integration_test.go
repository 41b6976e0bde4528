package integration_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/dkoren/drivenet/internal/config"
	"github.com/dkoren/drivenet/internal/database"
	"github.com/dkoren/drivenet/internal/repository"
	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/store/gormstore"
	"github.com/dkoren/drivenet/internal/types"
)

// TestWithMariaDB tests the document store against a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runStoreTests(t, db)
}

// TestWithPostgreSQL tests the document store against a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("POSTGRES_IMAGE"),
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(2 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	runStoreTests(t, db)
}

func runStoreTests(t *testing.T, db *gorm.DB) {
	t.Run("CreateAndRetrieveDocument", func(t *testing.T) {
		testCreateAndRetrieveDocument(t, db)
	})
	t.Run("PartialUpdate", func(t *testing.T) {
		testPartialUpdate(t, db)
	})
	t.Run("DeleteOperations", func(t *testing.T) {
		testDeleteOperations(t, db)
	})
	t.Run("NestedCollections", func(t *testing.T) {
		testNestedCollections(t, db)
	})
	t.Run("ChangeNotification", func(t *testing.T) {
		testChangeNotification(t, db)
	})
}

// testCreateAndRetrieveDocument tests creating and retrieving a document
func testCreateAndRetrieveDocument(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	repo := repository.New(gormstore.New(db), store.MustTemplate("cars"))

	id, err := repo.Add(ctx, store.Record{
		"userId": "u1",
		"make":   "Toyota",
		"model":  "Corolla",
		"year":   2019,
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a generated id")
	}

	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to retrieve document: %v", err)
	}
	if rec["make"] != "Toyota" {
		t.Errorf("Expected make Toyota, got %v", rec["make"])
	}
	if rec.ID() != id {
		t.Errorf("Expected id %s merged into the record, got %s", id, rec.ID())
	}
	if rec[store.CreatedAtField] == nil {
		t.Error("Expected server-assigned createdAt")
	}
}

// testPartialUpdate tests that a patch preserves omitted fields
func testPartialUpdate(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	repo := repository.New(gormstore.New(db), store.MustTemplate("users"))

	id, err := repo.Add(ctx, store.Record{
		"username": "alice",
		"email":    "alice@example.com",
		"points":   10,
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	if err := repo.Update(ctx, id, store.Record{"points": 25}); err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}

	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to retrieve document: %v", err)
	}
	if rec["username"] != "alice" || rec["email"] != "alice@example.com" {
		t.Errorf("Expected untouched fields to survive the patch: %+v", rec)
	}
	if pts, ok := rec["points"].(float64); !ok || pts != 25 {
		t.Errorf("Expected points 25, got %v", rec["points"])
	}

	// Updating a missing document reports not found
	err = repo.Update(ctx, "nonexistent", store.Record{"points": 1})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// testDeleteOperations tests delete and its idempotency
func testDeleteOperations(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	repo := repository.New(gormstore.New(db), store.MustTemplate("threads"))

	id, err := repo.Add(ctx, store.Record{"userId": "u1", "title": "doomed"})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	_, err = repo.FindByID(ctx, id)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op
	if err := repo.Delete(ctx, id); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}

// testNestedCollections tests that sibling subcollections are isolated
func testNestedCollections(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	s := gormstore.New(db)
	logs := repository.New(s, store.MustTemplate("cars", "*", "logs"))

	_, err := logs.Add(ctx, store.Record{"date": "2026-01-10", "liters": 40.0, "km": 600.0}, "car-a")
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	_, err = logs.Add(ctx, store.Record{"date": "2026-01-12", "liters": 35.0, "km": 500.0}, "car-b")
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	recsA, err := logs.FindAll(ctx, nil, "car-a")
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(recsA) != 1 || recsA[0]["date"] != "2026-01-10" {
		t.Errorf("Expected only car-a's log, got %+v", recsA)
	}
}

// testChangeNotification tests that mutations signal collection watchers
func testChangeNotification(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	s := gormstore.New(db)
	path := store.MustPath("threads", "t-watch", "comments")

	signals, cancel := s.Watch(path)
	defer cancel()

	_, err := s.Add(ctx, path, store.Record{"userId": "u1", "text": "hello"})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	select {
	case <-signals:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a change signal after Add")
	}
}
