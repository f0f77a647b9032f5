package controller

import (
	"qbwc-sync-be/internal/service"
	"qbwc-sync-be/pkg/soap"

	"github.com/gofiber/fiber/v2"
)

type IQBWCController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
	WSDL(ctx *fiber.Ctx) error
}

type qbwcController struct {
	service  service.IWebConnectorService
	path     string
	endpoint string
}

// NewQBWCController serves the Web Connector at path; endpoint is the public
// URL advertised in the WSDL.
func NewQBWCController(service service.IWebConnectorService, path, endpoint string) IQBWCController {
	if path == "" {
		path = "/qbwc"
	}
	return &qbwcController{service: service, path: path, endpoint: endpoint}
}

func (c *qbwcController) RegisterRoutes(r fiber.Router) {
	r.Post(c.path, c.Handle)
	r.Get(c.path, c.WSDL)
	r.Get(c.path+"/wsdl", c.WSDL)
}

// Handle always answers 200; failures travel inside the envelope.
func (c *qbwcController) Handle(ctx *fiber.Ctx) error {
	out := c.service.Handle(ctx.UserContext(), ctx.Body())
	ctx.Set(fiber.HeaderContentType, soap.ContentType)
	return ctx.Status(fiber.StatusOK).SendString(out)
}

func (c *qbwcController) WSDL(ctx *fiber.Ctx) error {
	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = ctx.BaseURL() + c.path
	}
	ctx.Set(fiber.HeaderContentType, soap.ContentType)
	return ctx.SendString(c.service.WSDL(endpoint))
}
