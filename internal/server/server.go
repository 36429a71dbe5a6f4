// Package server exposes the CV review and job search over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/erenakay1/CV-Analizer/internal"
	"github.com/erenakay1/CV-Analizer/internal/aggregator"
	"github.com/erenakay1/CV-Analizer/internal/career"
	"github.com/erenakay1/CV-Analizer/internal/config"
	"github.com/erenakay1/CV-Analizer/internal/document"
	"github.com/erenakay1/CV-Analizer/internal/export"
	"github.com/erenakay1/CV-Analizer/internal/report"
	"github.com/erenakay1/CV-Analizer/internal/store"
)

const (
	DefaultHistoryLimit = 20
	// formOverhead is the room left in the body limit for multipart framing
	// and form fields around the uploaded file.
	formOverhead       = 64 << 10
	healthCheckTimeout = 5 * time.Second
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Analyzer interface {
	Analyze(ctx context.Context, req career.Request) (*career.Result, error)
}

type Recommender interface {
	Recommend(ctx context.Context, req aggregator.Request) aggregator.Output
}

type History interface {
	GetRun(ctx context.Context, id string) (*internal.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]internal.AnalysisRun, error)
	TraceOf(ctx context.Context, runID string) ([]internal.TraceRecord, error)
	RecommendationsOf(ctx context.Context, runID string) ([]internal.JobRecord, error)
}

// Checker reports whether the reasoning backend can be reached.
type Checker interface {
	IsAvailable(ctx context.Context) error
}

type Config struct {
	BodyLimit int
	Documents document.Limits
	Backend   string
	Model     string
}

// Deps are the collaborators behind the routes. When Analyzer is nil,
// AnalyzerErr explains why and /analyze-cv answers with it. History may be
// nil, in which case the /runs routes are not registered.
type Deps struct {
	Analyzer    Analyzer
	AnalyzerErr error
	Backend     Checker
	Jobs        Recommender
	History     History
}

type Server struct {
	app    *fiber.App
	deps   Deps
	config Config
	log    *zap.Logger
}

func New(deps Deps, cfg Config, log *zap.Logger) *Server {
	if cfg.Documents.MaxBytes <= 0 {
		cfg.Documents.MaxBytes = document.MaxUploadBytes
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = cfg.Documents.MaxBytes + formOverhead
	}
	if deps.Analyzer == nil && deps.AnalyzerErr == nil {
		deps.AnalyzerErr = fmt.Errorf("%w: no reasoning backend", config.ErrConfigurationMissing)
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{deps: deps, config: cfg, log: log}
	s.app = fiber.New(fiber.Config{
		AppName:               "cvadvisor",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequest)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)
	s.app.Post("/analyze-cv", s.analyzeCV)
	s.app.Post("/jobs/search", s.searchJobs)

	if s.deps.History != nil {
		runs := s.app.Group("/runs")
		runs.Get("/", s.listRuns)
		runs.Get("/:id", s.getRun)
		runs.Get("/:id/report", s.runReport)
		runs.Get("/:id/export", s.runExport)
	}
}

// App is the underlying fiber application, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var (
		fe          *fiber.Error
		unsupported *document.UnsupportedInputError
	)
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &unsupported), errors.Is(err, document.ErrEmptyDocument):
		code = fiber.StatusBadRequest
	case errors.Is(err, config.ErrConfigurationMissing):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, store.ErrNotFound):
		code = fiber.StatusNotFound
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// health reports ready only when the analyzer is configured and, if a
// backend checker is set, the backend answers.
func (s *Server) health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":  "healthy",
		"backend": s.config.Backend,
		"model":   s.config.Model,
	}
	ready := s.deps.Analyzer != nil
	if ready && s.deps.Backend != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		defer cancel()
		if err := s.deps.Backend.IsAvailable(ctx); err != nil {
			s.log.Warn("backend unavailable", zap.Error(err))
			ready = false
			body["backend_error"] = err.Error()
		}
	}
	body["ready"] = ready
	return c.JSON(body)
}

func (s *Server) analyzeCV(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, int64(s.config.BodyLimit)+1))
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > s.config.BodyLimit {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large")
	}

	doc, err := s.config.Documents.Extract(fh.Filename, data)
	if err != nil {
		return err
	}
	if s.deps.Analyzer == nil {
		return s.deps.AnalyzerErr
	}

	res, err := s.deps.Analyzer.Analyze(c.UserContext(), career.Request{
		Document:       doc,
		TargetRole:     c.FormValue("target_role"),
		TargetLocation: c.FormValue("target_location"),
		SkipJobs:       c.FormValue("skip_jobs") == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

type searchRequest struct {
	Query    string   `json:"query"`
	Location string   `json:"location"`
	Skills   []string `json:"skills"`
	Limit    int      `json:"limit"`
}

func (s *Server) searchJobs(c *fiber.Ctx) error {
	if s.deps.Jobs == nil {
		return fmt.Errorf("%w: job search is not configured", config.ErrConfigurationMissing)
	}
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.Limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	out := s.deps.Jobs.Recommend(c.UserContext(), aggregator.Request{
		Role:     req.Query,
		Location: req.Location,
		Skills:   req.Skills,
		Limit:    req.Limit,
	})
	return c.JSON(out)
}

func (s *Server) listRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", DefaultHistoryLimit)
	runs, err := s.deps.History.ListRuns(c.UserContext(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []internal.AnalysisRun{}
	}
	return c.JSON(fiber.Map{"runs": runs})
}

type runDetail struct {
	Run             *internal.AnalysisRun  `json:"run"`
	Trace           []internal.TraceRecord `json:"trace"`
	Recommendations []internal.JobRecord   `json:"recommendations"`
}

func (s *Server) loadRun(c *fiber.Ctx) (*runDetail, error) {
	ctx := c.UserContext()
	id := c.Params("id")
	run, err := s.deps.History.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	trace, err := s.deps.History.TraceOf(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, err := s.deps.History.RecommendationsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return &runDetail{Run: run, Trace: trace, Recommendations: jobs}, nil
}

func (s *Server) getRun(c *fiber.Ctx) error {
	d, err := s.loadRun(c)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *Server) runReport(c *fiber.Ctx) error {
	d, err := s.loadRun(c)
	if err != nil {
		return err
	}
	r, err := report.FromRun(*d.Run, d.Recommendations)
	if err != nil {
		return err
	}
	if c.Query("format") == "md" {
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		return c.SendString(r.Markdown())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(r.HTML())
}

func (s *Server) runExport(c *fiber.Ctx) error {
	d, err := s.loadRun(c)
	if err != nil {
		return err
	}
	data, err := export.Workbook(d.Recommendations)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, d.Run.ID))
	return c.Send(data)
}
