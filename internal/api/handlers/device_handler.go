package handlers

import (
	"kalorikollen/domain"
	"kalorikollen/internal/api/presenters"
	"kalorikollen/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type (
	DeviceHandler interface {
		RegisterDevice(c *fiber.Ctx) error
	}

	deviceHandler struct {
		jwtService jwt.JWTService
	}
)

func NewDeviceHandler(jwtService jwt.JWTService) DeviceHandler {
	return &deviceHandler{
		jwtService: jwtService,
	}
}

// RegisterDevice hands out a new anonymous device id and its token. The
// ledger for the device is created lazily on first use.
func (h *deviceHandler) RegisterDevice(c *fiber.Ctx) error {
	id := uuid.New().String()
	token, err := h.jwtService.GenerateTokenDevice(id)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedRegisterDevice, err)
	}
	return presenters.SuccessResponse(c, domain.RegisterDeviceResponse{
		DeviceID: id,
		Token:    token,
	}, fiber.StatusCreated, domain.MessageSuccessRegisterDevice)
}
