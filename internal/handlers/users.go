package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dkoren/drivenet/internal/models"
	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/repository"
	"github.com/dkoren/drivenet/internal/store"
	"github.com/dkoren/drivenet/internal/utils"
)

// UserHandler handles user routes. Users are created at registration and
// mutated by profile edits; there is no hard-delete route.
type UserHandler struct {
	Repo *repository.DocumentRepository
	Sink *observe.Sink
}

// NewUserHandler builds the handler over the users collection.
func NewUserHandler(s store.Store, sink *observe.Sink) *UserHandler {
	return &UserHandler{
		Repo: repository.New(s, store.MustTemplate("users")),
		Sink: sink,
	}
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} models.User
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	records, err := h.Repo.FindAll(context.Background(), nil)
	if err != nil {
		return storeErrorResponse(c, err, "No users found", "listUsers")
	}

	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		user, err := models.FromRecord[models.User](rec)
		if err != nil {
			h.Sink.Report("decode users", err)
			continue
		}
		users = append(users, user)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// GetUser handles GET /api/users/:id
// @Summary Get one user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := h.Repo.FindByID(context.Background(), id)
	if err != nil {
		return storeErrorResponse(c, err, "User '"+id+"' not found", "getUser")
	}

	user, err := models.FromRecord[models.User](rec)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getUser")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// CreateUser handles POST /api/users
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if user.UID == "" || user.Username == "" || user.Email == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	rec, err := models.ToRecord(user)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createUser")
	}
	id, err := h.Repo.Add(context.Background(), rec)
	if err != nil {
		return storeErrorResponse(c, err, "", "createUser")
	}
	return utils.MutationSuccessResponse(c, id)
}

// UpdateUser handles PATCH /api/users/:id with a partial merge: fields
// omitted from the body are preserved.
// @Summary Update a user profile
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	partial := make(store.Record)
	if err := c.BodyParser(&partial); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}
	if len(partial) == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
	}

	if err := h.Repo.Update(context.Background(), id, partial); err != nil {
		return storeErrorResponse(c, err, "User '"+id+"' not found", "updateUser")
	}
	return utils.MutationSuccessResponse(c, id)
}
