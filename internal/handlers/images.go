package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dkoren/drivenet/internal/blob"
	"github.com/dkoren/drivenet/internal/utils"
)

// ImageHandler handles blob uploads. The returned URL is an opaque value
// the data layer stores as a plain field.
type ImageHandler struct {
	Blobs blob.Store
}

// Upload handles POST /api/images (multipart field "image").
// @Summary Upload an image
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /images [post]
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, "Invalid input: image file required", fiber.StatusBadRequest, "validation.input")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "uploadImage")
	}
	defer f.Close()

	url, err := h.Blobs.Put(context.Background(), fileHeader.Filename, f)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "uploadImage")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": url})
}
