// common.go
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
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dkoren/drivenet/internal/types"
	"github.com/dkoren/drivenet/internal/utils"
)

// storeErrorResponse maps the store error taxonomy onto HTTP: a missing
// document is 404, an unreachable store 503, anything else 500.
func storeErrorResponse(c *fiber.Ctx, err error, notFoundMessage, errorType string) error {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return utils.NotFoundResponse(c, notFoundMessage)
	case errors.Is(err, types.ErrStoreUnavailable):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusServiceUnavailable, errorType)
	default:
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
	}
}
