package inspectionHandler

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"

	"uniform-inspection/internal/api/inspection"
	contextPkg "uniform-inspection/pkg/context"
	"uniform-inspection/pkg/handlerUtil"
	"uniform-inspection/pkg/log"
)

const uploadMaxAge = 7 * 24 * time.Hour

func (h *InspectionHandler) InspectUniform(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing uniform inspection request")

	req := inspection.InspectionRequest{
		Partner:        strings.TrimSpace(ctx.FormValue("partner")),
		TechnicianName: strings.TrimSpace(ctx.FormValue("technician_name")),
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		return errHandler.Handle(ctx, requestID, inspection.ErrMissingPhoto, ctx.Path(), "get_photo")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, inspection.ErrInvalidImageFile, ctx.Path(), "validate_image_file")
	}

	if removed := h.utils.CleanOldFiles(h.uploadsDir, uploadMaxAge); removed > 0 {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"removed":    removed,
		}).Debug("Cleaned old uploads")
	}

	safeName, err := h.utils.SafeUploadName(file.Filename)
	if err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build upload name")
		return errHandler.Handle(ctx, requestID, inspection.ErrInternalServerError, ctx.Path(), "build_upload_name")
	}

	imagePath := filepath.Join(h.uploadsDir, safeName)
	if err := ctx.SaveFile(file, imagePath); err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to save upload")
		return errHandler.Handle(ctx, requestID, inspection.ErrInternalServerError, ctx.Path(), "save_upload")
	}

	result, err := h.inspectionService.InspectUniform(c, req, imagePath)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "inspect_uniform")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"partner":    result.Partner,
			"percentage": result.Percentage,
		}).Info("Uniform inspection successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, inspection.InspectionResponse{
			Data: *result,
		})
	}
}

func (h *InspectionHandler) History(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	rows, err := h.inspectionService.History(limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_history")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, inspection.HistoryResponse{
		Data: rows,
	})
}
