package controllers

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/Govind-619/DomainDesk/middleware"
	"github.com/Govind-619/DomainDesk/services"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
)

// InitiateRenewalRequest represents the renewal order request body.
// Duration is decoded loosely so that a non-integer is reported as a bad
// duration instead of a bad body.
type InitiateRenewalRequest struct {
	Duration interface{} `json:"duration"`
}

// ConfirmRenewalRequest represents the checkout callback body. The razorpay_*
// names are what the Razorpay checkout hands the browser.
type ConfirmRenewalRequest struct {
	PaymentID         string      `json:"paymentId"`
	OrderID           string      `json:"orderId"`
	Signature         string      `json:"signature"`
	RazorpayPaymentID string      `json:"razorpay_payment_id"`
	RazorpayOrderID   string      `json:"razorpay_order_id"`
	RazorpaySignature string      `json:"razorpay_signature"`
	Duration          interface{} `json:"duration"`
	DocumentFormat    string      `json:"documentFormat"`
	FileFormat        string      `json:"fileFormat"`
}

// RenewalService is the part of services.RenewalService the handlers use
type RenewalService interface {
	Initiate(ctx context.Context, in services.InitiateInput) (*services.PaymentOrder, error)
	Confirm(ctx context.Context, in services.ConfirmInput) (*services.RenewalResult, error)
}

type RenewalController struct {
	renewals RenewalService
}

func NewRenewalController(renewals RenewalService) *RenewalController {
	return &RenewalController{renewals: renewals}
}

// InitiateRenewal handles POST /projects/:id/renew/initiate
func (rc *RenewalController) InitiateRenewal(c *gin.Context) {
	utils.LogInfo("InitiateRenewal called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	var req InitiateRenewalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.LogError("Invalid renewal request body: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	order, err := rc.renewals.Initiate(c.Request.Context(), services.InitiateInput{
		ProjectID: c.Param("id"),
		UserID:    user.ID,
		Duration:  wholeYears(req.Duration),
	})
	if err != nil {
		utils.LogError("Renewal initiation failed for project %s: %v", c.Param("id"), err)
		utils.RespondError(c, err)
		return
	}

	utils.LogInfo("Renewal order %s issued for project %s", order.OrderID, c.Param("id"))
	utils.Success(c, utils.MsgOrderCreated, order)
}

// ConfirmRenewal handles POST /projects/:id/renew/confirm
func (rc *RenewalController) ConfirmRenewal(c *gin.Context) {
	utils.LogInfo("ConfirmRenewal called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	var req ConfirmRenewalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.LogError("Invalid confirmation request body: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := rc.renewals.Confirm(c.Request.Context(), services.ConfirmInput{
		ProjectID:      c.Param("id"),
		UserID:         user.ID,
		PaymentID:      firstNonEmpty(req.PaymentID, req.RazorpayPaymentID),
		OrderID:        firstNonEmpty(req.OrderID, req.RazorpayOrderID),
		Signature:      firstNonEmpty(req.Signature, req.RazorpaySignature),
		Duration:       wholeYears(req.Duration),
		DocumentFormat: firstNonEmpty(req.DocumentFormat, req.FileFormat),
	})
	if err != nil {
		utils.LogError("Renewal confirmation failed for project %s: %v", c.Param("id"), err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, result.Message(), result)
}

// bindOptionalJSON decodes the body, treating an empty body as {}
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// wholeYears accepts only JSON integers; anything else becomes 0, which the
// service rejects as an invalid duration.
func wholeYears(v interface{}) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
