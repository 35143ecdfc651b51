package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	inspectionHandler "uniform-inspection/internal/api/inspection/handler"
	inspectionRepository "uniform-inspection/internal/api/inspection/repository"
	inspectionService "uniform-inspection/internal/api/inspection/service"
	"uniform-inspection/internal/middleware"
	"uniform-inspection/pkg/gemini"
	"uniform-inspection/pkg/roboflow"
	"uniform-inspection/pkg/s3"
	"uniform-inspection/pkg/sheets"
	"uniform-inspection/pkg/utils"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	detector     roboflow.ItfRoboflow
	sheetsClient sheets.ItfSheets
	geminiClient gemini.IGemini
	s3Client     s3.ItfS3
	storage      StoragePaths
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("detector client is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithStorage() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before storage")
		}
		s.storage = ResolveStoragePaths(s.log)
		return nil
	}
}

func WithDetector(detector roboflow.ItfRoboflow) ServerOption {
	return func(s *Server) error {
		s.detector = detector
		return nil
	}
}

func WithSheetsClient(client sheets.ItfSheets) ServerOption {
	return func(s *Server) error {
		s.sheetsClient = client
		return nil
	}
}

// WithGeminiClient is tolerant: the carnet OCR annotation is optional, so a
// missing API key only logs a warning instead of failing startup.
func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Gemini client not available, carnet OCR disabled: %v", err)
			}
			return nil
		}
		s.geminiClient = client
		return nil
	}
}

// WithS3Client is tolerant for the same reason: photo archiving is best-effort.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New(s.log)
		if err != nil {
			if s.log != nil {
				s.log.Warnf("S3 client not available, photo archive disabled: %v", err)
			}
			return nil
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Inspection domain
	inspectionRepo := inspectionRepository.New(s.log, inspectionRepository.Config{
		Path:     s.storage.ResultsPath,
		SeedPath: s.storage.SeedPath,
	})
	inspectionServices := inspectionService.NewInspectionService(
		s.log, s.detector, inspectionRepo, s.sheetsClient, s.geminiClient, s.s3Client, s.utils,
	)
	inspectionHandlers := inspectionHandler.New(
		s.log, s.validator, s.middleware, inspectionServices, s.utils, s.storage.UploadsDir,
	)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, inspectionHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Use(s.middleware.NewRateLimiter)

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
