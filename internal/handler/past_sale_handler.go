package handler

import (
	"agency-crm/internal/repository"
	"agency-crm/internal/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type PastSaleHandler struct {
	saleRepo      *repository.PastSaleRepository
	aftercareRepo *repository.AftercareRepository
}

func NewPastSaleHandler(saleRepo *repository.PastSaleRepository, aftercareRepo *repository.AftercareRepository) *PastSaleHandler {
	return &PastSaleHandler{saleRepo: saleRepo, aftercareRepo: aftercareRepo}
}

func (h *PastSaleHandler) GetPastSales(c *fiber.Ctx) error {
	teamID := c.Locals("team_id").(int)

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	sales, total, err := h.saleRepo.FindByTeam(teamID, params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve past sales", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Past sales retrieved successfully", fiber.Map{
		"past_sales": sales,
	}, pagination)
}

func (h *PastSaleHandler) GetPastSale(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid past sale ID", err)
	}

	sale, err := h.saleRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Past sale not found", err)
	}

	plans, err := h.aftercareRepo.GetPlansBySale(sale.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve aftercare plans", err)
	}

	return utils.SuccessResponse(c, "Past sale retrieved successfully", fiber.Map{
		"past_sale":       sale,
		"aftercare_plans": plans,
	})
}

func (h *PastSaleHandler) DeletePastSale(c *fiber.Ctx) error {
	teamID := c.Locals("team_id").(int)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid past sale ID", err)
	}

	if err := h.saleRepo.Delete(id, teamID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete past sale", err)
	}

	return utils.SuccessResponse(c, "Past sale deleted", nil)
}
