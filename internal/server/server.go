package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/catalog"
	"github.com/vdmx/riskintel/internal/config"
	"github.com/vdmx/riskintel/internal/draft"
	"github.com/vdmx/riskintel/internal/observability"
	obslogger "github.com/vdmx/riskintel/internal/observability/logger"
	obsmetrics "github.com/vdmx/riskintel/internal/observability/metrics"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	"github.com/vdmx/riskintel/internal/ratelimit"
	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
	"github.com/vdmx/riskintel/internal/upload"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics
	Metrics     *obsmetrics.Metrics
	Limiter     *ratelimit.Limiter `optional:"true"`
	Log         *zap.Logger
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(p.HTTPMetrics))
	r.Use(ratelimit.Middleware(p.Limiter, p.Metrics, p.Log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(p EngineParams) *gin.Engine {
	return NewEngine(p)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	catalog    *catalog.Holder
	caseSvc    casedomain.Service
	paymentSvc paymentdomain.Service
	ticketSvc  ticketdomain.Service
	uploads    upload.Store
	reconciler *draft.Reconciler
	poller     *draft.PaymentPoller
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	Catalog    *catalog.Holder
	CaseSvc    casedomain.Service
	PaymentSvc paymentdomain.Service
	TicketSvc  ticketdomain.Service
	Uploads    upload.Store
	Reconciler *draft.Reconciler
	Poller     *draft.PaymentPoller
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		catalog:    p.Catalog,
		caseSvc:    p.CaseSvc,
		paymentSvc: p.PaymentSvc,
		ticketSvc:  p.TicketSvc,
		uploads:    p.Uploads,
		reconciler: p.Reconciler,
		poller:     p.Poller,
	}

	svc.registerClientRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerClientRoutes() {
	s.engine.GET("/api/packages", s.ListPackages)
	s.engine.POST("/create-checkout-session", s.CreateCheckoutSession)
	s.engine.POST("/webhook", s.HandleWebhook)

	s.engine.GET("/api/case/:id", s.GetCase)
	s.engine.PUT("/api/case/:id", s.UpdateCase)

	s.engine.POST("/api/tickets", s.CreateTicket)
	s.engine.GET("/uploads/:filename", s.ServeUpload)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/", s.AdminRequired())

	admin.GET("/api/admin/cases", s.ListCases)
	admin.PATCH("/api/case/:id/status", s.SetCaseStatus)
	admin.POST("/api/case/:id/score", s.ScoreCase)
	admin.DELETE("/api/case/:id", s.DeleteCase)

	admin.GET("/api/admin/tickets", s.ListTickets)
	admin.PATCH("/api/admin/tickets/:id/status", s.SetTicketStatus)

	admin.POST("/api/debug/create-case", s.CreateDebugCase)
}
