package promocodes

import (
	"net/http"

	"seatkeep/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ValidatePromoCode(ctx *gin.Context) {
	var req ValidatePromoCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	quote, err := c.service.Validate(ctx.Request.Context(), req.Code, req.OrderAmount, req.EventID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Promo code is valid", quote, nil)
}

func (c *Controller) CreatePromoCode(ctx *gin.Context) {
	var req CreatePromoCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	code, err := c.service.Create(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Promo code created successfully", code, nil)
}

func (c *Controller) ListPromoCodes(ctx *gin.Context) {
	var q ListPromoCodesQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RespondBindError(ctx, err)
		return
	}

	codes, err := c.service.List(ctx.Request.Context(), q.EventID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Promo codes retrieved successfully", codes, nil)
}

func (c *Controller) DeactivatePromoCode(ctx *gin.Context) {
	if err := c.service.Deactivate(ctx.Request.Context(), ctx.Param("code")); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Promo code deactivated successfully", nil, nil)
}

func SetupPromoCodeRoutes(rg *gin.RouterGroup, controller *Controller, admin ...gin.HandlerFunc) {
	rg.POST("/promo-codes/validate", controller.ValidatePromoCode) // POST /api/v1/promo-codes/validate

	adminCodes := rg.Group("/admin/promo-codes")
	adminCodes.Use(admin...)
	{
		adminCodes.POST("", controller.CreatePromoCode)             // POST /api/v1/admin/promo-codes
		adminCodes.GET("", controller.ListPromoCodes)               // GET /api/v1/admin/promo-codes?event_id=
		adminCodes.DELETE("/:code", controller.DeactivatePromoCode) // DELETE /api/v1/admin/promo-codes/:code
	}
}
