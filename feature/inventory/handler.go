package inventory

import (
	"errors"

	"patrimony-manager/core/logger"
	"patrimony-manager/core/reconcile"
	"patrimony-manager/feature/inventory/adjust"
	"patrimony-manager/feature/inventory/compare"
	"patrimony-manager/feature/inventory/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventories, diffs and adjustments.
type Handler struct {
	service  *Service
	compare  *compare.Service
	adjust   *adjust.Service
	logger   *zap.Logger
	pageSize int
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, cmp *compare.Service, adj *adjust.Service, logger *zap.Logger, pageSize int) *Handler {
	return &Handler{service: service, compare: cmp, adjust: adj, logger: logger, pageSize: pageSize}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/inventories")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)

	group.Post("/:id/reads", h.HandleAddRead)
	group.Get("/:id/reads", h.HandleListReads)
	group.Patch("/:id/reads/:readId", h.HandleUpdateReadQuantity)
	group.Delete("/:id/reads/:readId", h.HandleDeleteRead)

	group.Post("/:id/recompute", h.HandleRecompute)
	group.Get("/:id/diffs", h.HandleListDiffs)
	group.Get("/:id/divergences", h.HandleHasDivergences)
	group.Post("/:id/adjust", h.HandleAdjust)

	diffs := app.Group("/diffs")
	diffs.Patch("/:id/second-count", h.HandleSecondCount)
	diffs.Put("/:id/resolution", h.HandleSaveResolution)
}

type createInventoryRequest struct {
	Name      string `json:"name"`
	ScopeType string `json:"scope_type"`
	AreaID    *uint  `json:"area_id"`
}

// HandleCreate opens a new inventory with its baseline snapshot.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req createInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	inv, err := h.service.Create(c.UserContext(), NewInventory{
		Name:      req.Name,
		ScopeType: req.ScopeType,
		AreaID:    req.AreaID,
	})
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// HandleGet returns one inventory by id.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	inv, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(inv)
}

// HandleList returns a paginated inventory listing.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	result, err := h.service.List(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("page_size", h.pageSize))
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(fiber.Map{"items": result.Items, "total": result.Total})
}

type addReadRequest struct {
	AssetNumber *string `json:"asset_number"`
	AssetName   string  `json:"asset_name"`
	AreaID      *uint   `json:"area_id"`
	Quantity    int     `json:"quantity"`
}

// HandleAddRead records one counted item.
func (h *Handler) HandleAddRead(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	var req addReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	read, err := h.service.AddRead(c.UserContext(), id, NewRead{
		AssetNumber: req.AssetNumber,
		AssetName:   req.AssetName,
		AreaID:      req.AreaID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.Status(fiber.StatusCreated).JSON(read)
}

// HandleListReads returns every read item of an inventory.
func (h *Handler) HandleListReads(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	reads, err := h.service.ListReads(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(reads)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateReadQuantity replaces the counted quantity of one read item.
func (h *Handler) HandleUpdateReadQuantity(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}
	readID, ok := h.paramID(c, "readId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid read id"})
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.UpdateReadQuantity(c.UserContext(), id, readID, req.Quantity); err != nil {
		return h.renderError(c, l, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDeleteRead removes one read item.
func (h *Handler) HandleDeleteRead(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}
	readID, ok := h.paramID(c, "readId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid read id"})
	}

	if err := h.service.DeleteRead(c.UserContext(), id, readID); err != nil {
		return h.renderError(c, l, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRecompute rebuilds the diff set of an inventory.
func (h *Handler) HandleRecompute(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	result, err := h.compare.Recompute(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(fiber.Map{"total": result.Total, "divergent": result.Divergent})
}

// HandleListDiffs returns a filtered, paginated diff listing.
func (h *Handler) HandleListDiffs(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	result, err := h.compare.List(c.UserContext(), id, compare.Filters{
		OnlyDivergent: c.QueryBool("only_divergent", false),
		Search:        c.Query("search"),
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("page_size", h.pageSize),
	})
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(fiber.Map{
		"items":     result.Items,
		"total":     result.Total,
		"divergent": result.Divergent,
	})
}

// HandleHasDivergences reports whether the inventory still diverges.
func (h *Handler) HandleHasDivergences(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	has, err := h.compare.HasDivergences(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(fiber.Map{"has_divergences": has})
}

// HandleAdjust applies the resolved diffs and closes the inventory.
func (h *Handler) HandleAdjust(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid inventory id"})
	}

	result, err := h.adjust.Apply(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.JSON(fiber.Map{"adjusted": result.Adjusted, "created": result.Created})
}

type secondCountRequest struct {
	Quantity int `json:"quantity"`
}

// HandleSecondCount records the second-round quantity of one diff.
func (h *Handler) HandleSecondCount(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid diff id"})
	}

	var req secondCountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.compare.UpdateSecondCount(c.UserContext(), id, req.Quantity); err != nil {
		return h.renderError(c, l, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type saveResolutionRequest struct {
	Choice        string  `json:"choice"`
	FinalQuantity *int    `json:"final_quantity"`
	L1Quantity    *int    `json:"l1_quantity"`
	L2Quantity    *int    `json:"l2_quantity"`
	Note          *string `json:"note"`
}

// HandleSaveResolution stores the operator's choice for one diff.
func (h *Handler) HandleSaveResolution(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	id, ok := h.paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid diff id"})
	}

	var req saveResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	err := h.compare.SaveResolution(c.UserContext(), id, compare.Resolution{
		Choice:        reconcile.Choice(req.Choice),
		FinalQuantity: req.FinalQuantity,
		L1Quantity:    req.L1Quantity,
		L2Quantity:    req.L2Quantity,
		Note:          req.Note,
	})
	if err != nil {
		return h.renderError(c, l, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// paramID parses a positive integer route parameter.
func (h *Handler) paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// renderError maps service errors to HTTP statuses.
func (h *Handler) renderError(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case errors.Is(err, models.ErrInventoryNotFound),
		errors.Is(err, models.ErrDiffNotFound),
		errors.Is(err, models.ErrReadNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrInventoryFinished),
		errors.Is(err, models.ErrDuplicateRead),
		errors.Is(err, models.ErrDuplicateNewItem):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrNothingToAdjust),
		errors.Is(err, models.ErrIncompleteResolution),
		errors.Is(err, models.ErrMissingArea),
		errors.Is(err, models.ErrInvalidChoice),
		errors.Is(err, models.ErrOutOfScope),
		errors.Is(err, models.ErrNameRequired),
		errors.Is(err, models.ErrAreaRequired),
		errors.Is(err, models.ErrNegativeQuantity),
		errors.Is(err, models.ErrInvalidScope):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Inventory request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
