// cars.go
//
// Community and vehicle tracking data service
// Copyright (c) 2026 Daniel Koren <dan@dkoren.dev>
//
// This file is part of drivenet.
// drivenet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// drivenet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with drivenet.
// If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dkoren/drivenet/internal/analytics"
	"github.com/dkoren/drivenet/internal/models"
	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/repository"
	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/types"
	"github.com/dkoren/drivenet/internal/utils"
)

// CarHandler handles car and fuel-log routes. Logs live in the nested
// cars/{carId}/logs collection; deleting a car leaves its logs in place
// (no cascade), matching the source behavior.
type CarHandler struct {
	Cars *repository.DocumentRepository
	Logs *repository.DocumentRepository
	Sink *observe.Sink
}

// NewCarHandler builds the handler over the cars tree.
func NewCarHandler(s store.Store, sink *observe.Sink) *CarHandler {
	return &CarHandler{
		Cars: repository.New(s, store.MustTemplate("cars")),
		Logs: repository.New(s, store.MustTemplate("cars", "*", "logs")),
		Sink: sink,
	}
}

// ListCars handles GET /api/cars
// @Summary List cars
// @Tags Cars
// @Produce json
// @Success 200 {array} models.Car
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /cars [get]
func (h *CarHandler) ListCars(c *fiber.Ctx) error {
	records, err := h.Cars.FindAll(context.Background(), nil)
	if err != nil {
		return storeErrorResponse(c, err, "No cars found", "listCars")
	}

	cars := make([]models.Car, 0, len(records))
	for _, rec := range records {
		car, err := models.FromRecord[models.Car](rec)
		if err != nil {
			h.Sink.Report("decode cars", err)
			continue
		}
		cars = append(cars, car)
	}
	return c.Status(fiber.StatusOK).JSON(cars)
}

// GetCar handles GET /api/cars/:id
// @Summary Get one car
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} models.Car
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /cars/{id} [get]
func (h *CarHandler) GetCar(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := h.Cars.FindByID(context.Background(), id)
	if err != nil {
		return storeErrorResponse(c, err, "Car '"+id+"' not found", "getCar")
	}

	car, err := models.FromRecord[models.Car](rec)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getCar")
	}
	return c.Status(fiber.StatusOK).JSON(car)
}

// CreateCar handles POST /api/cars
// @Summary Create a car
// @Tags Cars
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /cars [post]
func (h *CarHandler) CreateCar(c *fiber.Ctx) error {
	var car models.Car
	if err := c.BodyParser(&car); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if car.UserID == "" || car.Make == "" || car.Model == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	rec, err := models.ToRecord(car)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createCar")
	}
	id, err := h.Cars.Add(context.Background(), rec)
	if err != nil {
		return storeErrorResponse(c, err, "", "createCar")
	}
	return utils.MutationSuccessResponse(c, id)
}

// UpdateCar handles PATCH /api/cars/:id (partial merge).
// @Summary Update a car
// @Tags Cars
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /cars/{id} [patch]
func (h *CarHandler) UpdateCar(c *fiber.Ctx) error {
	id := c.Params("id")

	partial := make(store.Record)
	if err := c.BodyParser(&partial); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if len(partial) == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	if err := h.Cars.Update(context.Background(), id, partial); err != nil {
		return storeErrorResponse(c, err, "Car '"+id+"' not found", "updateCar")
	}
	return utils.MutationSuccessResponse(c, id)
}

// DeleteCar handles DELETE /api/cars/:id
// @Summary Delete a car
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /cars/{id} [delete]
func (h *CarHandler) DeleteCar(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.Cars.Delete(context.Background(), id); err != nil {
		return storeErrorResponse(c, err, "", "deleteCar")
	}
	return utils.MutationSuccessResponse(c, id)
}

// ListLogs handles GET /api/cars/:id/logs, ordered by log date with a
// document-id tiebreak.
// @Summary List a car's fuel logs
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {array} models.FuelLog
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /cars/{id}/logs [get]
func (h *CarHandler) ListLogs(c *fiber.Ctx) error {
	carID := c.Params("id")

	records, err := h.Logs.FindAll(context.Background(), &store.Order{Field: "date"}, carID)
	if err != nil {
		return storeErrorResponse(c, err, "No logs found", "listLogs")
	}

	logs := make([]models.FuelLog, 0, len(records))
	for _, rec := range records {
		l, err := models.FromRecord[models.FuelLog](rec)
		if err != nil {
			h.Sink.Report("decode logs", err)
			continue
		}
		logs = append(logs, l)
	}
	return c.Status(fiber.StatusOK).JSON(logs)
}

// CreateLogs handles POST /api/cars/:id/logs. The body is one log entry or
// an array of them (bulk import from older clients).
// @Summary Add fuel log entries
// @Tags Cars
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /cars/{id}/logs [post]
func (h *CarHandler) CreateLogs(c *fiber.Ctx) error {
	carID := c.Params("id")

	var body types.FlexList[models.FuelLog]
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	logs := body.Slice()
	if len(logs) == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	var lastID string
	for _, l := range logs {
		if l.Date == "" {
			return utils.ErrorResponse(c, "Invalid input: date is required", fiber.StatusBadRequest, "validation.input")
		}
		rec, err := models.ToRecord(l)
		if err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createLogs")
		}
		id, err := h.Logs.Add(context.Background(), rec, carID)
		if err != nil {
			return storeErrorResponse(c, err, "", "createLogs")
		}
		lastID = id
	}
	return utils.MutationSuccessResponse(c, lastID)
}

// UpdateLog handles PATCH /api/cars/:id/logs/:logId (partial merge).
// @Summary Update a fuel log entry
// @Tags Cars
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Param logId path string true "Log ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /cars/{id}/logs/{logId} [patch]
func (h *CarHandler) UpdateLog(c *fiber.Ctx) error {
	carID := c.Params("id")
	logID := c.Params("logId")

	partial := make(store.Record)
	if err := c.BodyParser(&partial); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if len(partial) == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	if err := h.Logs.Update(context.Background(), logID, partial, carID); err != nil {
		return storeErrorResponse(c, err, "Log '"+logID+"' not found", "updateLog")
	}
	return utils.MutationSuccessResponse(c, logID)
}

// DeleteLog handles DELETE /api/cars/:id/logs/:logId
// @Summary Delete a fuel log entry
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Param logId path string true "Log ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /cars/{id}/logs/{logId} [delete]
func (h *CarHandler) DeleteLog(c *fiber.Ctx) error {
	carID := c.Params("id")
	logID := c.Params("logId")

	if err := h.Logs.Delete(context.Background(), logID, carID); err != nil {
		return storeErrorResponse(c, err, "", "deleteLog")
	}
	return utils.MutationSuccessResponse(c, logID)
}

// Consumption handles GET /api/cars/:id/consumption: the full analytics
// report over the car's logs.
// @Summary Fuel consumption report
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} analytics.Report
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /cars/{id}/consumption [get]
func (h *CarHandler) Consumption(c *fiber.Ctx) error {
	carID := c.Params("id")

	records, err := h.Logs.FindAll(context.Background(), &store.Order{Field: "date"}, carID)
	if err != nil {
		return storeErrorResponse(c, err, "No logs found", "consumption")
	}

	logs := make([]models.FuelLog, 0, len(records))
	for _, rec := range records {
		l, err := models.FromRecord[models.FuelLog](rec)
		if err != nil {
			h.Sink.Report("decode logs", err)
			continue
		}
		logs = append(logs, l)
	}

	return c.Status(fiber.StatusOK).JSON(analytics.Compute(logs))
}
