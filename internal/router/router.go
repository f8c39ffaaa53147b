package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/config"
	"github.com/vitorf997/packing-creator/internal/handler"
	"github.com/vitorf997/packing-creator/internal/infra"
	"github.com/vitorf997/packing-creator/internal/metrics"
	"github.com/vitorf997/packing-creator/internal/middleware"
	"github.com/vitorf997/packing-creator/internal/repository"
	"github.com/vitorf997/packing-creator/internal/service"
	"github.com/vitorf997/packing-creator/internal/worker"
)

// Deps are the infrastructure pieces built by the composition root.
// RDB may be nil; Store and Dispatcher then run in memory.
type Deps struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RDB        *redis.Client
	Store      cache.Store
	Dispatcher *worker.Dispatcher
	Mailer     *infra.Mailer
	SMTP       *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine. It also
// registers the label render processor on the dispatcher, since that
// processor needs the label service built here.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Cfg
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.RateLimiter(cfg.RateLimitRPM, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	clientRepo := repository.NewClientRepository(d.DB)
	matrixRepo := repository.NewSizeMatrixRepository(d.DB)
	templateRepo := repository.NewLabelTemplateRepository(d.DB)
	listRepo := repository.NewPackingListRepository(d.DB)
	sessions := repository.NewSessionStore(d.Store, cfg.AllocationSessionTTL)

	// ── Services ─────────────────────────────────────────────────────────────
	layouts := service.NewLayoutCache(d.Store, cfg.LayoutCacheTTL)
	clientSvc := service.NewClientService(clientRepo, templateRepo, layouts)
	matrixSvc := service.NewSizeMatrixService(matrixRepo)
	templateSvc := service.NewLabelTemplateService(templateRepo, clientRepo, layouts)
	listSvc := service.NewPackingListService(listRepo, clientRepo, matrixRepo)
	allocationSvc := service.NewAllocationService(sessions, clientRepo, matrixRepo, listRepo)

	var jobs service.LabelJobQueue
	if d.Dispatcher != nil {
		jobs = d.Dispatcher
	}
	labelSvc := service.NewLabelService(listRepo, clientSvc, templateSvc, jobs, d.Store, d.Mailer.Enabled())
	if d.Dispatcher != nil {
		d.Dispatcher.Register(worker.JobTypeLabels,
			worker.NewLabelWorker(labelSvc, d.Dispatcher, d.Store, cfg.LabelStoragePath))
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	clientsH := handler.NewClientsHandler(clientSvc)
	matricesH := handler.NewSizeMatricesHandler(matrixSvc)
	templatesH := handler.NewLabelTemplatesHandler(templateSvc)
	listsH := handler.NewPackingListsHandler(listSvc)
	labelsH := handler.NewLabelsHandler(labelSvc)
	allocationsH := handler.NewAllocationsHandler(allocationSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(d.DB, d.RDB, d.SMTP))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		clients := v1.Group("/clients")
		{
			clients.POST("", clientsH.Crear)
			clients.GET("", clientsH.Listar)
			clients.GET("/:id", clientsH.ObtenerPorID)
			clients.PUT("/:id", clientsH.Actualizar)
			clients.DELETE("/:id", clientsH.Eliminar)
			clients.GET("/:id/label-fields", clientsH.LabelFields)
		}

		matrices := v1.Group("/size-matrices")
		{
			matrices.POST("", matricesH.Crear)
			matrices.GET("", matricesH.Listar)
			matrices.GET("/:id", matricesH.ObtenerPorID)
			matrices.PUT("/:id", matricesH.Actualizar)
			matrices.DELETE("/:id", matricesH.Eliminar)
		}

		templates := v1.Group("/label-templates")
		{
			templates.POST("", templatesH.Crear)
			templates.GET("", templatesH.Listar)
			templates.GET("/resolve", templatesH.Resolve)
			templates.GET("/:id", templatesH.ObtenerPorID)
			templates.PUT("/:id", templatesH.Actualizar)
			templates.DELETE("/:id", templatesH.Eliminar)
		}

		lists := v1.Group("/packing-lists")
		{
			lists.POST("", listsH.Crear)
			lists.GET("", listsH.Listar)
			lists.GET("/:id", listsH.ObtenerPorID)
			lists.PUT("/:id", listsH.Actualizar)
			lists.DELETE("/:id", listsH.Eliminar)
			lists.GET("/:id/labels", labelsH.Sheet)
			lists.GET("/:id/labels.pdf", labelsH.PDF)
			lists.GET("/:id/export.xlsx", labelsH.XLSX)
			lists.POST("/:id/labels/jobs", labelsH.EncolarTrabajo)
		}
		v1.GET("/label-jobs/:job_id", labelsH.EstadoTrabajo)

		alloc := v1.Group("/allocations")
		{
			alloc.POST("", allocationsH.CrearSesion)
			alloc.GET("/:id", allocationsH.ObtenerSesion)
			alloc.DELETE("/:id", allocationsH.EliminarSesion)
			alloc.POST("/:id/rows", allocationsH.AddRow)
			alloc.PATCH("/:id/rows/:row_id", allocationsH.SetField)
			alloc.DELETE("/:id/rows/:row_id", allocationsH.RemoveRow)
			alloc.PATCH("/:id/rows/:row_id/item-fields", allocationsH.SetItemField)
			alloc.POST("/:id/validate", allocationsH.Validar)
			alloc.POST("/:id/submit", allocationsH.Confirmar)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
