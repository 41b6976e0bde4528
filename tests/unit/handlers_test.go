package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/dkoren/drivenet/internal/handlers"
	"github.com/dkoren/drivenet/internal/models"
	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/store/memstore"
	"github.com/dkoren/drivenet/tests/helpers"
)

// TestListCars tests the GET /api/cars endpoint
func TestListCars(t *testing.T) {
	s := memstore.New()
	helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "Toyota", Model: "Corolla"})
	helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "Honda", Model: "Civic"})

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Get("/api/cars", handler.ListCars)

	req := httptest.NewRequest("GET", "/api/cars", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var cars []models.Car
	helpers.ParseJSON(t, resp, &cars)
	if len(cars) != 2 {
		t.Fatalf("Expected 2 cars, got %d", len(cars))
	}
	// Insertion order: createdAt ascending
	if cars[0].Make != "Toyota" || cars[1].Make != "Honda" {
		t.Errorf("Expected insertion order, got %s, %s", cars[0].Make, cars[1].Make)
	}
}

// TestCreateCar tests the POST /api/cars endpoint
func TestCreateCar(t *testing.T) {
	s := memstore.New()

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Post("/api/cars", handler.CreateCar)
	app.Get("/api/cars/:id", handler.GetCar)

	body, _ := json.Marshal(models.Car{UserID: "u1", Make: "Skoda", Model: "Octavia", Year: 2018})
	req := httptest.NewRequest("POST", "/api/cars", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	id := helpers.ParseMutation(t, resp)
	if id == "" {
		t.Fatal("Expected an id in mutation response")
	}

	// The created car is retrievable by the returned id
	req = httptest.NewRequest("GET", "/api/cars/"+id, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var car models.Car
	helpers.ParseJSON(t, resp, &car)
	if car.Make != "Skoda" || car.ID != id {
		t.Errorf("Unexpected car: %+v", car)
	}
	if car.CreatedAt == "" {
		t.Error("Expected server-assigned createdAt")
	}
}

// TestCreateCarValidation tests input validation on POST /api/cars
func TestCreateCarValidation(t *testing.T) {
	s := memstore.New()

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Post("/api/cars", handler.CreateCar)

	// Missing make/model
	body, _ := json.Marshal(models.Car{UserID: "u1"})
	req := httptest.NewRequest("POST", "/api/cars", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestUpdateCarPartial tests that PATCH /api/cars/:id preserves omitted fields
func TestUpdateCarPartial(t *testing.T) {
	s := memstore.New()
	id := helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "Mazda", Model: "3", FuelType: "petrol"})

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Patch("/api/cars/:id", handler.UpdateCar)
	app.Get("/api/cars/:id", handler.GetCar)

	body := []byte(`{"image":"https://img.example/3.jpg"}`)
	req := httptest.NewRequest("PATCH", "/api/cars/"+id, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/cars/"+id, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	var car models.Car
	helpers.ParseJSON(t, resp, &car)
	if car.Image != "https://img.example/3.jpg" {
		t.Errorf("Expected updated image, got %q", car.Image)
	}
	if car.Make != "Mazda" || car.FuelType != "petrol" {
		t.Errorf("Expected untouched fields to survive the patch: %+v", car)
	}
}

// TestDeleteCar tests the DELETE /api/cars/:id endpoint
func TestDeleteCar(t *testing.T) {
	s := memstore.New()
	id := helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "Fiat", Model: "Panda"})

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Delete("/api/cars/:id", handler.DeleteCar)
	app.Get("/api/cars/:id", handler.GetCar)

	req := httptest.NewRequest("DELETE", "/api/cars/"+id, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/cars/"+id, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)

	// Deleting again is a no-op, not an error
	req = httptest.NewRequest("DELETE", "/api/cars/"+id, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
}

// TestCreateLogsBulk tests that POST /api/cars/:id/logs accepts both a single
// object and an array of objects
func TestCreateLogsBulk(t *testing.T) {
	s := memstore.New()
	carID := helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "VW", Model: "Golf"})

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Post("/api/cars/:id/logs", handler.CreateLogs)
	app.Get("/api/cars/:id/logs", handler.ListLogs)

	// Single object
	body := []byte(`{"date":"2026-01-10","liters":40,"km":600,"condition":"city"}`)
	req := httptest.NewRequest("POST", "/api/cars/"+carID+"/logs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	// Array, with string-typed numbers as older exports produce
	body = []byte(`[
		{"date":"2026-01-20","liters":"35.5","km":"480","condition":"highway"},
		{"date":"2026-02-01","liters":42,"km":610,"condition":"city"}
	]`)
	req = httptest.NewRequest("POST", "/api/cars/"+carID+"/logs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/cars/"+carID+"/logs", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var logs []models.FuelLog
	helpers.ParseJSON(t, resp, &logs)
	if len(logs) != 3 {
		t.Fatalf("Expected 3 logs, got %d", len(logs))
	}
	// Logs come back ordered by date
	if logs[0].Date != "2026-01-10" || logs[2].Date != "2026-02-01" {
		t.Errorf("Expected date order, got %s .. %s", logs[0].Date, logs[2].Date)
	}
	if logs[1].Liters.Float64() != 35.5 {
		t.Errorf("Expected string-typed liters to parse, got %v", logs[1].Liters)
	}
}

// TestCreateLogsRequiresDate tests validation on POST /api/cars/:id/logs
func TestCreateLogsRequiresDate(t *testing.T) {
	s := memstore.New()
	carID := helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "VW", Model: "Golf"})

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Post("/api/cars/:id/logs", handler.CreateLogs)

	body := []byte(`{"liters":40,"km":600}`)
	req := httptest.NewRequest("POST", "/api/cars/"+carID+"/logs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestConsumptionEndpoint tests the GET /api/cars/:id/consumption endpoint
func TestConsumptionEndpoint(t *testing.T) {
	s := memstore.New()
	carID := helpers.SeedCar(t, s, models.Car{UserID: "u1", Make: "VW", Model: "Golf"})
	helpers.SeedFuelLog(t, s, carID, models.FuelLog{Date: "2026-01-10", Liters: 15, Km: 250, Condition: models.ConditionCity})
	helpers.SeedFuelLog(t, s, carID, models.FuelLog{Date: "2026-01-20", Liters: 30, Km: 500, Condition: models.ConditionHighway})

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Get("/api/cars/:id/consumption", handler.Consumption)

	req := httptest.NewRequest("GET", "/api/cars/"+carID+"/consumption", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var report map[string]interface{}
	helpers.ParseJSON(t, resp, &report)
	if report["overall"].(float64) != 6.0 {
		t.Errorf("Expected overall 6.0, got %v", report["overall"])
	}
	series := report["series"].([]interface{})
	if len(series) != 2 {
		t.Errorf("Expected 2 series points, got %d", len(series))
	}
}

// TestThreadVote tests the POST /api/threads/:id/votes endpoint
func TestThreadVote(t *testing.T) {
	s := memstore.New()
	id := helpers.SeedThread(t, s, models.Thread{UserID: "u1", Title: "Winter tires"})

	app := fiber.New()
	handler := handlers.NewThreadHandler(s, observe.NewNopSink())
	app.Post("/api/threads/:id/votes", handler.Vote)
	app.Get("/api/threads/:id", handler.GetThread)

	vote := func(userID, direction string) *models.Thread {
		body := []byte(`{"userId":"` + userID + `","direction":"` + direction + `"}`)
		req := httptest.NewRequest("POST", "/api/threads/"+id+"/votes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 200)

		req = httptest.NewRequest("GET", "/api/threads/"+id, nil)
		resp, err = app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		var thread models.Thread
		helpers.ParseJSON(t, resp, &thread)
		return &thread
	}

	// First vote counts
	thread := vote("alice", "upvote")
	if thread.Upvotes != 1 || thread.Downvotes != 0 {
		t.Errorf("Expected 1/0 after upvote, got %d/%d", thread.Upvotes, thread.Downvotes)
	}

	// Repeating the same vote is a no-op
	thread = vote("alice", "upvote")
	if thread.Upvotes != 1 || thread.Downvotes != 0 {
		t.Errorf("Expected repeat vote to be a no-op, got %d/%d", thread.Upvotes, thread.Downvotes)
	}

	// Switching direction adjusts both counters
	thread = vote("alice", "downvote")
	if thread.Upvotes != 0 || thread.Downvotes != 1 {
		t.Errorf("Expected 0/1 after switch, got %d/%d", thread.Upvotes, thread.Downvotes)
	}

	// A second voter is independent
	thread = vote("bob", "upvote")
	if thread.Upvotes != 1 || thread.Downvotes != 1 {
		t.Errorf("Expected 1/1 after second voter, got %d/%d", thread.Upvotes, thread.Downvotes)
	}
}

// TestThreadVoteValidation tests input validation on POST /api/threads/:id/votes
func TestThreadVoteValidation(t *testing.T) {
	s := memstore.New()
	id := helpers.SeedThread(t, s, models.Thread{UserID: "u1", Title: "Winter tires"})

	app := fiber.New()
	handler := handlers.NewThreadHandler(s, observe.NewNopSink())
	app.Post("/api/threads/:id/votes", handler.Vote)

	body := []byte(`{"userId":"alice","direction":"sideways"}`)
	req := httptest.NewRequest("POST", "/api/threads/"+id+"/votes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestListThreadsNewestFirst tests the ordering of GET /api/threads
func TestListThreadsNewestFirst(t *testing.T) {
	s := memstore.New()
	helpers.SeedThread(t, s, models.Thread{UserID: "u1", Title: "older"})
	helpers.SeedThread(t, s, models.Thread{UserID: "u2", Title: "newer"})

	app := fiber.New()
	handler := handlers.NewThreadHandler(s, observe.NewNopSink())
	app.Get("/api/threads", handler.ListThreads)

	req := httptest.NewRequest("GET", "/api/threads", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var threads []models.Thread
	helpers.ParseJSON(t, resp, &threads)
	if len(threads) != 2 {
		t.Fatalf("Expected 2 threads, got %d", len(threads))
	}
	if threads[0].Title != "newer" {
		t.Errorf("Expected newest thread first, got %q", threads[0].Title)
	}
}

// TestCommentsAndReplies tests the nested comment and reply endpoints
func TestCommentsAndReplies(t *testing.T) {
	s := memstore.New()
	threadID := helpers.SeedThread(t, s, models.Thread{UserID: "u1", Title: "Oil change interval"})

	app := fiber.New()
	handler := handlers.NewThreadHandler(s, observe.NewNopSink())
	app.Post("/api/threads/:id/comments", handler.CreateComment)
	app.Get("/api/threads/:id/comments", handler.ListComments)
	app.Post("/api/threads/:id/comments/:commentId/replies", handler.CreateReply)
	app.Get("/api/threads/:id/comments/:commentId/replies", handler.ListReplies)

	body, _ := json.Marshal(models.Comment{UserID: "u2", Text: "Every 10k km"})
	req := httptest.NewRequest("POST", "/api/threads/"+threadID+"/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	commentID := helpers.ParseMutation(t, resp)

	body, _ = json.Marshal(models.Reply{UserID: "u3", Text: "Depends on the oil"})
	req = httptest.NewRequest("POST", "/api/threads/"+threadID+"/comments/"+commentID+"/replies", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/threads/"+threadID+"/comments/"+commentID+"/replies", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var replies []models.Reply
	helpers.ParseJSON(t, resp, &replies)
	if len(replies) != 1 || replies[0].Text != "Depends on the oil" {
		t.Errorf("Unexpected replies: %+v", replies)
	}

	// Comments under a different thread id are not visible
	req = httptest.NewRequest("GET", "/api/threads/otherthread/comments", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var comments []models.Comment
	helpers.ParseJSON(t, resp, &comments)
	if len(comments) != 0 {
		t.Errorf("Expected no comments under foreign thread, got %d", len(comments))
	}
}

// TestStoreUnavailable tests the 503 mapping when the backing store fails
func TestStoreUnavailable(t *testing.T) {
	s := memstore.New()
	s.FailNext(1)

	app := fiber.New()
	handler := handlers.NewCarHandler(s, observe.NewNopSink())
	app.Get("/api/cars", handler.ListCars)

	req := httptest.NewRequest("GET", "/api/cars", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 503)
}
