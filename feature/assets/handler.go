package assets

import (
	"errors"

	"patrimony-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the asset registry.
type Handler struct {
	service  *Service
	logger   *zap.Logger
	pageSize int
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger, pageSize int) *Handler {
	return &Handler{service: service, logger: logger, pageSize: pageSize}
}

// RegisterRoutes registers the asset routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/assets")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)

	areas := app.Group("/areas")
	areas.Post("/", h.HandleCreateArea)
	areas.Get("/", h.HandleListAreas)
}

type createAssetRequest struct {
	AssetNumber        *string  `json:"asset_number"`
	Name               string   `json:"name"`
	Description        *string  `json:"description"`
	Quantity           int      `json:"quantity"`
	UnitValue          *float64 `json:"unit_value"`
	AreaID             uint     `json:"area_id"`
	AutoGenerateNumber bool     `json:"auto_generate_number"`
	NumberFormat       string   `json:"number_format"`
}

// HandleCreate registers a new asset.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req createAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	asset, err := h.service.Create(c.UserContext(), NewAsset{
		AssetNumber:        req.AssetNumber,
		Name:               req.Name,
		Description:        req.Description,
		Quantity:           req.Quantity,
		UnitValue:          req.UnitValue,
		AreaID:             req.AreaID,
		AutoGenerateNumber: req.AutoGenerateNumber,
		NumberFormat:       req.NumberFormat,
	})
	if err != nil {
		return h.renderError(c, l, err)
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}

// HandleGet returns one asset by id.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid asset id"})
	}

	asset, err := h.service.GetByID(c.UserContext(), uint(id))
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(asset)
}

// HandleList returns a filtered, paginated asset listing.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	filters := Filters{
		SearchName:   c.Query("name"),
		SearchNumber: c.Query("number"),
		Page:         c.QueryInt("page", 1),
		PageSize:     c.QueryInt("page_size", h.pageSize),
	}
	if areaID := c.QueryInt("area_id", 0); areaID > 0 {
		id := uint(areaID)
		filters.AreaID = &id
	}

	result, err := h.service.List(c.UserContext(), filters)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(fiber.Map{"items": result.Items, "total": result.Total})
}

type createAreaRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// HandleCreateArea registers a new area.
func (h *Handler) HandleCreateArea(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req createAreaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	area, err := h.service.CreateArea(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.Status(fiber.StatusCreated).JSON(area)
}

// HandleListAreas returns every active area.
func (h *Handler) HandleListAreas(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	areas, err := h.service.ListAreas(c.UserContext())
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(areas)
}

// renderError maps service errors to HTTP statuses.
func (h *Handler) renderError(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, ErrAssetNotFound), errors.Is(err, ErrAreaNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrDuplicateNumber):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrAreaRequired),
		errors.Is(err, ErrNegativeQuantity),
		errors.Is(err, ErrNegativeUnitValue):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Asset request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
