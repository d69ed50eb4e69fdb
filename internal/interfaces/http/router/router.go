// Package router assembles the gin engine of the cash desk API.
package router

import (
	"net/http"

	"github.com/erp/cashdesk/internal/infrastructure/logger"
	"github.com/erp/cashdesk/internal/interfaces/http/handler"
	"github.com/erp/cashdesk/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar registers a set of routes under a versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Route describes one registered endpoint
type Route struct {
	Method      string
	Path        string
	Description string
}

// DomainGroup collects the routes of one domain under a common prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method      string
	path        string
	handlers    []gin.HandlerFunc
	description string
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

// Handle registers a route with a short description
func (dg *DomainGroup) Handle(method, path, description string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:      method,
		path:        path,
		handlers:    handlers,
		description: description,
	})
	return dg
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Routes lists the routes of the group relative to the API root
func (dg *DomainGroup) Routes() []Route {
	routes := make([]Route, 0, len(dg.routes))
	for _, r := range dg.routes {
		routes = append(routes, Route{Method: r.method, Path: dg.prefix + r.path, Description: r.description})
	}
	return routes
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Handlers bundles the handlers served by the engine
type Handlers struct {
	Closing    *handler.CashClosingHandler
	Settlement *handler.SettlementHandler
	Alert      *handler.AlertHandler
	System     *handler.SystemHandler
}

// Config controls the middleware chain
type Config struct {
	ServiceName    string
	APIVersion     string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	Tenant         middleware.TenantConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// DefaultConfig returns a development configuration
func DefaultConfig() Config {
	return Config{
		ServiceName: "cashdesk",
		APIVersion:  "v1",
		CORS:        middleware.DefaultCORSConfig(),
		Tenant:      middleware.DefaultTenantConfig(),
		MaxBodySize: 1 << 20,
	}
}

// CashRoutes returns the closing, expense, alert and settlement endpoints
func CashRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("cash", "/cash")
	g.Handle(http.MethodGet, "/summary", "daily summary", h.Closing.GetDailySummary).
		Handle(http.MethodPost, "/closings", "close a business date", h.Closing.CreateClosing).
		Handle(http.MethodGet, "/closings", "list closings", h.Closing.ListClosings).
		Handle(http.MethodGet, "/closings/latest", "latest closing", h.Closing.GetLatestClosing).
		Handle(http.MethodGet, "/closings/export", "export closings as xlsx", h.Closing.ExportClosings).
		Handle(http.MethodGet, "/closings/:id", "get closing", h.Closing.GetClosing).
		Handle(http.MethodPost, "/expenses", "record cash expense", h.Closing.RecordExpense).
		Handle(http.MethodGet, "/expenses", "list cash expenses", h.Closing.ListExpenses).
		Handle(http.MethodGet, "/alerts", "closing alerts", h.Alert.GetAlerts).
		Handle(http.MethodPost, "/settlements", "open settlement", h.Settlement.OpenSession).
		Handle(http.MethodGet, "/settlements/:id", "settlement state", h.Settlement.GetSession).
		Handle(http.MethodPost, "/settlements/:id/payments", "add payment", h.Settlement.AddPayment).
		Handle(http.MethodDelete, "/settlements/:id/payments/:paymentId", "remove payment", h.Settlement.RemovePayment).
		Handle(http.MethodPost, "/settlements/:id/fill-remainder", "fill remainder with cash", h.Settlement.FillRemainder).
		Handle(http.MethodPost, "/settlements/:id/reset", "reset for a new total", h.Settlement.ResetSession).
		Handle(http.MethodPost, "/settlements/:id/confirm", "confirm settlement", h.Settlement.ConfirmSession)
	return g
}

// SystemRoutes returns the ping and info endpoints
func SystemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		Handle(http.MethodGet, "/ping", "ping", h.System.Ping).
		Handle(http.MethodGet, "/info", "system information", h.System.GetSystemInfo)
}

// New builds the gin engine with the middleware chain and all routes
func New(cfg Config, h Handlers, log *zap.Logger) (*gin.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	if cfg.TracingEnabled {
		engine.Use(middleware.Tracing(cfg.ServiceName))
	}
	engine.Use(
		middleware.RequestID(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Tenant(cfg.Tenant),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.Recovery(),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)

	api := engine.Group("/api/" + cfg.APIVersion)
	for _, group := range []*DomainGroup{SystemRoutes(h), CashRoutes(h)} {
		group.RegisterRoutes(api)
		for _, r := range group.Routes() {
			log.Debug("route registered",
				zap.String("group", group.Name()),
				zap.String("method", r.Method),
				zap.String("path", "/api/"+cfg.APIVersion+r.Path),
				zap.String("description", r.Description),
			)
		}
	}

	return engine, nil
}
