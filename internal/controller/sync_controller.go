package controller

import (
	"errors"
	"fmt"

	"qbwc-sync-be/internal/dto"
	"qbwc-sync-be/internal/pkg/serverutils"
	"qbwc-sync-be/internal/service"
	"qbwc-sync-be/pkg/soap"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Trigger(ctx *fiber.Ctx) error
	Pending(ctx *fiber.Ctx) error
	CancelPending(ctx *fiber.Ctx) error
	Operations(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	QWC(ctx *fiber.Ctx) error
}

// QWCOptions fills the generated Web Connector registration file.
type QWCOptions struct {
	AppName          string
	AppDescription   string
	EndpointURL      string
	RunEveryNMinutes int
}

type syncController struct {
	service service.ISyncTriggerService
	qwc     QWCOptions
}

func NewSyncController(service service.ISyncTriggerService, qwc QWCOptions) ISyncController {
	return &syncController{service: service, qwc: qwc}
}

func (c *syncController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/sync/v1")
	h.Use(auth)
	h.Post("companies/:companyId/trigger", c.Trigger)
	h.Get("companies/:companyId/pending", c.Pending)
	h.Delete("companies/:companyId/pending", c.CancelPending)
	h.Get("companies/:companyId/operations", c.Operations)
	h.Get("companies/:companyId/qwc", c.QWC)
	h.Get("sessions/:ticket/progress", c.Progress)
}

func companyID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("companyId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid company id")
	}
	return id, nil
}

// httpError maps service errors onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound), errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCompanyInactive):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidBundle), errors.Is(err, service.ErrInvalidOperationKind):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

func (c *syncController) Trigger(ctx *fiber.Ctx) error {
	id, err := companyID(ctx)
	if err != nil {
		return err
	}

	var req dto.TriggerSyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Trigger(ctx.UserContext(), id, req)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Sync queued", res))
}

func (c *syncController) Pending(ctx *fiber.Ctx) error {
	id, err := companyID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Pending(ctx.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Pending operations", res))
}

func (c *syncController) CancelPending(ctx *fiber.Ctx) error {
	id, err := companyID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.CancelPending(ctx.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Pending operations cancelled", res))
}

func (c *syncController) Operations(ctx *fiber.Ctx) error {
	id, err := companyID(ctx)
	if err != nil {
		return err
	}

	var req dto.OperationListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Operations(ctx.UserContext(), id, req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Sync log", res))
}

func (c *syncController) Progress(ctx *fiber.Ctx) error {
	res, err := c.service.Progress(ctx.UserContext(), ctx.Params("ticket"))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session progress", res))
}

func (c *syncController) QWC(ctx *fiber.Ctx) error {
	id, err := companyID(ctx)
	if err != nil {
		return err
	}
	company, err := c.service.Company(ctx.UserContext(), id)
	if err != nil {
		return httpError(err)
	}

	endpoint := c.qwc.EndpointURL
	if endpoint == "" {
		endpoint = ctx.BaseURL() + "/qbwc"
	}
	file, err := soap.QWC(soap.QWCConfig{
		AppName:          fmt.Sprintf("%s (%s)", c.qwc.AppName, company.Code),
		AppURL:           endpoint,
		AppDescription:   c.qwc.AppDescription,
		UserName:         service.UsernamePrefix + company.Code,
		CompanyID:        company.Id.String(),
		RunEveryNMinutes: c.qwc.RunEveryNMinutes,
	})
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/xml")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.qwc"`, company.Code))
	return ctx.Send(file)
}
