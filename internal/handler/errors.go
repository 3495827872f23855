package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/giftregistry-backend/internal/errs"
	"github.com/sefazor/giftregistry-backend/internal/models"
	"go.uber.org/zap"
)

type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[error]errorMapping{
	errs.ErrValidation:      {fiber.StatusBadRequest, "validation"},
	errs.ErrUnauthenticated: {fiber.StatusUnauthorized, "unauthenticated"},
	errs.ErrAuthorization:   {fiber.StatusForbidden, "forbidden"},
	errs.ErrNotFound:        {fiber.StatusNotFound, "not_found"},
	errs.ErrAlreadyReserved: {fiber.StatusConflict, "already_reserved"},
	errs.ErrStorage:         {fiber.StatusServiceUnavailable, "storage_unavailable"},
}

// StatusFor maps an error to its HTTP status and response code.
func StatusFor(err error) (int, string) {
	if m, ok := errorMappings[errs.Kind(err)]; ok {
		return m.status, m.code
	}
	return fiber.StatusInternalServerError, "internal"
}

func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status, code := StatusFor(err)
	msg := errs.Message(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
		if status == fiber.StatusInternalServerError {
			msg = "internal error"
		}
	}
	return c.Status(status).JSON(models.CodedErrorResponse(code, msg))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.CodedErrorResponse("validation", msg))
}

func readFormFile(c *fiber.Ctx, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, errs.Validation("file field %q is required", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errs.Validation("cannot read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errs.Validation("cannot read uploaded file: %v", err)
	}
	return data, nil
}
