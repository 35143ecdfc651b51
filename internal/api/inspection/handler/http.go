package inspectionHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	inspectionService "uniform-inspection/internal/api/inspection/service"
	"uniform-inspection/internal/middleware"
	"uniform-inspection/pkg/utils"
)

type InspectionHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	inspectionService inspectionService.IInspectionService
	utils             utils.IUtils
	uploadsDir        string
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	is inspectionService.IInspectionService,
	utils utils.IUtils,
	uploadsDir string,
) *InspectionHandler {
	return &InspectionHandler{
		log:               log,
		validator:         validator,
		middleware:        middleware,
		inspectionService: is,
		utils:             utils,
		uploadsDir:        uploadsDir,
	}
}

func (h *InspectionHandler) Start(srv fiber.Router) {
	inspections := srv.Group("/inspections")
	inspections.Post("/", h.InspectUniform)
	inspections.Get("/history", h.History)
}
