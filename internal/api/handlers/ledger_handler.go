package handlers

import (
	"errors"
	"fmt"
	"io"

	"kalorikollen/domain"
	"kalorikollen/entities"
	"kalorikollen/internal/api/presenters"
	"kalorikollen/internal/utils/mailing"
	"kalorikollen/pkg/ledger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const maxImageSize = 10 << 20

type (
	LedgerHandler interface {
		GetDashboard(c *fiber.Ctx) error
		GetMeals(c *fiber.Ctx) error
		LogMealFromImage(c *fiber.Ctx) error
		DeleteMeal(c *fiber.Ctx) error
		LookupBarcode(c *fiber.Ctx) error
		LogBarcodeMeal(c *fiber.Ctx) error
		GetWeights(c *fiber.Ctx) error
		AddWeight(c *fiber.Ctx) error
		DeleteWeight(c *fiber.Ctx) error
		AddWater(c *fiber.Ctx) error
		GetFavorites(c *fiber.Ctx) error
		AddFavorite(c *fiber.Ctx) error
		DeleteFavorite(c *fiber.Ctx) error
		LogFavorite(c *fiber.Ctx) error
		UpdateGoals(c *fiber.Ctx) error
		UpdateHeight(c *fiber.Ctx) error
		GetCoaching(c *fiber.Ctx) error
		Export(c *fiber.Ctx) error
		Import(c *fiber.Ctx) error
		MailExport(c *fiber.Ctx) error
	}

	// MailSender delivers a mail with attachments; mailing.SendMail in
	// production.
	MailSender func(toEmail, subject, body string, attachments ...mailing.Attachment) error

	ledgerHandler struct {
		ledgerService ledger.LedgerService
		validator     *validator.Validate
		sendMail      MailSender
	}
)

func NewLedgerHandler(ledgerService ledger.LedgerService, validator *validator.Validate, sendMail MailSender) LedgerHandler {
	return &ledgerHandler{
		ledgerService: ledgerService,
		validator:     validator,
		sendMail:      sendMail,
	}
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrIndexOutOfRange), errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateFavorite):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrMealDeletionDisabled):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrEstimationFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrEstimatorNotConfigured), errors.Is(err, domain.ErrPersistence):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func deviceID(c *fiber.Ctx) string {
	id, _ := c.Locals("device_id").(string)
	return id
}

func (h *ledgerHandler) GetDashboard(c *fiber.Ctx) error {
	res, err := h.ledgerService.Dashboard(c.Context(), deviceID(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetDashboard, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDashboard)
}

func (h *ledgerHandler) GetMeals(c *fiber.Ctx) error {
	l, err := h.ledgerService.State(c.Context(), deviceID(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetMeals, err)
	}
	meals := l.Meals
	if meals == nil {
		meals = []entities.MealEntry{}
	}
	return presenters.SuccessResponse(c, meals, fiber.StatusOK, domain.MessageSuccessGetMeals)
}

func (h *ledgerHandler) LogMealFromImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if file.Size > maxImageSize {
		return presenters.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, domain.MessageFailedAnalyzeMeal,
			fmt.Errorf("%w: image larger than %d bytes", domain.ErrInvalidInput, maxImageSize))
	}

	f, err := file.Open()
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.ledgerService.LogMealFromImage(c.Context(), deviceID(c), domain.MealImage{
		Data:     data,
		MimeType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAnalyzeMeal, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessLogMeal)
}

func (h *ledgerHandler) DeleteMeal(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteMeal, err)
	}
	if err := h.ledgerService.DeleteMeal(c.Context(), deviceID(c), index); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteMeal, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteMeal)
}

func (h *ledgerHandler) LookupBarcode(c *fiber.Ctx) error {
	req := domain.LogBarcodeRequest{Barcode: c.Params("code")}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLookupBarcode, err)
	}
	res, err := h.ledgerService.LookupBarcode(c.Context(), req.Barcode)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedLookupBarcode, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLookupBarcode)
}

func (h *ledgerHandler) LogBarcodeMeal(c *fiber.Ctx) error {
	req := new(domain.LogBarcodeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogMeal, err)
	}

	product, err := h.ledgerService.LookupBarcode(c.Context(), req.Barcode)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedLookupBarcode, err)
	}
	res, err := h.ledgerService.LogBarcodeProduct(c.Context(), deviceID(c), product)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedLogMeal, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessLogMeal)
}

func (h *ledgerHandler) GetWeights(c *fiber.Ctx) error {
	l, err := h.ledgerService.State(c.Context(), deviceID(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetWeights, err)
	}
	weights := l.Weights
	if weights == nil {
		weights = []entities.WeightSample{}
	}
	return presenters.SuccessResponse(c, weights, fiber.StatusOK, domain.MessageSuccessGetWeights)
}

func (h *ledgerHandler) AddWeight(c *fiber.Ctx) error {
	req := new(domain.AddWeightRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddWeight, err)
	}

	res, err := h.ledgerService.AddWeight(c.Context(), deviceID(c), req.Weight)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddWeight, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddWeight)
}

func (h *ledgerHandler) DeleteWeight(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteWeight, err)
	}
	if err := h.ledgerService.DeleteWeight(c.Context(), deviceID(c), index); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteWeight, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteWeight)
}

func (h *ledgerHandler) AddWater(c *fiber.Ctx) error {
	req := new(domain.AddWaterRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddWater, err)
	}

	res, err := h.ledgerService.AddWater(c.Context(), deviceID(c), req.Amount)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddWater, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddWater)
}

func (h *ledgerHandler) GetFavorites(c *fiber.Ctx) error {
	l, err := h.ledgerService.State(c.Context(), deviceID(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFavorites, err)
	}
	favorites := l.Favorites
	if favorites == nil {
		favorites = []entities.MealEntry{}
	}
	return presenters.SuccessResponse(c, favorites, fiber.StatusOK, domain.MessageSuccessGetFavorites)
}

func (h *ledgerHandler) AddFavorite(c *fiber.Ctx) error {
	req := new(entities.MealEntry)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddFavorite, err)
	}
	if err := h.ledgerService.AddFavorite(c.Context(), deviceID(c), *req); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddFavorite, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusCreated, domain.MessageSuccessAddFavorite)
}

func (h *ledgerHandler) DeleteFavorite(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteFavorite, err)
	}
	if err := h.ledgerService.DeleteFavorite(c.Context(), deviceID(c), index); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteFavorite, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteFavorite)
}

func (h *ledgerHandler) LogFavorite(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogMeal, err)
	}
	res, err := h.ledgerService.LogFavorite(c.Context(), deviceID(c), index)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedLogMeal, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessLogMeal)
}

func (h *ledgerHandler) UpdateGoals(c *fiber.Ctx) error {
	req := new(entities.Goals)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	res, err := h.ledgerService.SetGoals(c.Context(), deviceID(c), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateGoals, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateGoals)
}

func (h *ledgerHandler) UpdateHeight(c *fiber.Ctx) error {
	req := new(domain.UpdateHeightRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.ledgerService.SetHeight(c.Context(), deviceID(c), req.Height); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateHeight, err)
	}
	return presenters.SuccessResponse(c, req, fiber.StatusOK, domain.MessageSuccessUpdateHeight)
}

func (h *ledgerHandler) GetCoaching(c *fiber.Ctx) error {
	res, err := h.ledgerService.Coaching(c.Context(), deviceID(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedProcessRequest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCoaching)
}

// Export responds with the backup document itself rather than the usual
// envelope, so the file can be imported again as is.
func (h *ledgerHandler) Export(c *fiber.Ctx) error {
	doc, data, err := h.export(c)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedExport, err)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exportFilename(doc)))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *ledgerHandler) export(c *fiber.Ctx) (domain.ExportDocument, []byte, error) {
	doc, err := h.ledgerService.Export(c.Context(), deviceID(c))
	if err != nil {
		return domain.ExportDocument{}, nil, err
	}
	data, err := ledger.EncodeExport(doc)
	if err != nil {
		return domain.ExportDocument{}, nil, err
	}
	return doc, data, nil
}

func exportFilename(doc domain.ExportDocument) string {
	return fmt.Sprintf("kalorikollen-data-%s.json", doc.ExportDate.Format(entities.DateLayout))
}

func (h *ledgerHandler) Import(c *fiber.Ctx) error {
	doc, err := ledger.DecodeExport(c.Body())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedImport, err)
	}
	if err := h.ledgerService.Import(c.Context(), deviceID(c), doc); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedImport, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessImport)
}

func (h *ledgerHandler) MailExport(c *fiber.Ctx) error {
	req := new(domain.MailExportRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedMailExport, err)
	}

	doc, data, err := h.export(c)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedMailExport, err)
	}
	err = h.sendMail(req.Email, "Din KaloriKollen-export",
		"<p>Hej!</p><p>Här är en kopia av all din data från KaloriKollen.</p>",
		mailing.Attachment{Filename: exportFilename(doc), Data: data},
	)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadGateway, domain.MessageFailedMailExport, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessMailExport)
}
