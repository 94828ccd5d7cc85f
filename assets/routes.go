// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package assets

import (
	"github.com/gofiber/fiber/v2"

	"github.com/7maceX1D/assetd/assets/handlers"
	constraints "github.com/7maceX1D/assetd/internal/middleware/constraints"
)

// AssetHandlers holds all the handlers this router needs.
type AssetHandlers struct {
	AssetHandler *handlers.AssetHandler
}

// RegisterRoutes is the single entry point for setting up asset routes.
func RegisterRoutes(app *fiber.App, h *AssetHandlers) {
	if h == nil || h.AssetHandler == nil {
		panic("AssetHandlers is required")
	}

	assetRoutes := app.Group("/assets")

	// The UUID constraint runs first so malformed ids fail without touching
	// the database or storage.
	assetRoutes.Get("/:id/url",
		constraints.RequireUUID("id"),
		h.AssetHandler.GetAssetURL,
	)

	assetRoutes.Get("/:id",
		constraints.RequireUUID("id"),
		h.AssetHandler.GetAsset,
	)

	assetRoutes.Head("/:id",
		constraints.RequireUUID("id"),
		h.AssetHandler.GetAsset,
	)
}
