// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package errors

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/7maceX1D/assetd/assets/services"
)

// HandleInvalidRequestError handles invalid request errors
func HandleInvalidRequestError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"error":   "INVALID_REQUEST",
		"message": message,
	})
}

// HandleServiceError maps service layer errors to HTTP responses.
// Forbidden deliberately covers malformed ids, missing records, denied
// access and missing bytes alike so callers cannot probe for existence.
func HandleServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrForbidden) {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"error":   "FORBIDDEN",
			"message": "You don't have permission to access this.",
		})
	}

	if errors.Is(err, services.ErrRangeNotSatisfiable) {
		return c.Status(http.StatusRequestedRangeNotSatisfiable).JSON(fiber.Map{
			"error":   "RANGE_NOT_SATISFIABLE",
			"message": err.Error(),
		})
	}

	if errors.Is(err, services.ErrInvalidQuery) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   "INVALID_QUERY",
			"message": err.Error(),
		})
	}

	if errors.Is(err, services.ErrIllegalTransformation) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   "ILLEGAL_TRANSFORMATION",
			"message": err.Error(),
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error":   "INTERNAL_ERROR",
		"message": err.Error(),
	})
}
