// Package router mounts the CRM resources (companies, contacts, leads, deals
// and the rest) under the versioned /api prefix.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router owns the /api/<version> group and the middleware every CRM call passes
// through (authentication, tenant resolution).
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithMiddleware adds middleware to the versioned API group only.
// Nil entries are skipped so optional middleware can be passed unconditionally.
func WithMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		for _, mw := range middleware {
			if mw != nil {
				r.middleware = append(r.middleware, mw)
			}
		}
	}
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars until Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registered resource on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// CRUDHandler is the handler shape shared by the CRM entities
type CRUDHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	GetByID(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// Resource collects the routes of one CRM resource, e.g. /companies
type Resource struct {
	name       string
	path       string
	routes     []route
	middleware []gin.HandlerFunc
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewResource(name, path string) *Resource {
	return &Resource{name: name, path: path}
}

// Name is the resource name used in the route table
func (res *Resource) Name() string {
	return res.name
}

// Use adds middleware to every route of the resource
func (res *Resource) Use(middleware ...gin.HandlerFunc) *Resource {
	res.middleware = append(res.middleware, middleware...)
	return res
}

// CRUD registers the collection and item routes:
// GET and POST on the collection, GET, PUT and DELETE on /:id.
func (res *Resource) CRUD(h CRUDHandler) *Resource {
	return res.
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

// Activities registers the activity timeline of a record at /:id/activities
func (res *Resource) Activities(list gin.HandlerFunc) *Resource {
	return res.GET("/:id/activities", list)
}

func (res *Resource) GET(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.handle(http.MethodGet, path, handlers)
}

func (res *Resource) POST(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.handle(http.MethodPost, path, handlers)
}

func (res *Resource) PUT(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.handle(http.MethodPut, path, handlers)
}

func (res *Resource) PATCH(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.handle(http.MethodPatch, path, handlers)
}

func (res *Resource) DELETE(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.handle(http.MethodDelete, path, handlers)
}

func (res *Resource) handle(method, path string, handlers []gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, route{method: method, path: path, handlers: handlers})
	return res
}

// RegisterRoutes implements RouteRegistrar
func (res *Resource) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(res.path)
	if len(res.middleware) > 0 {
		group.Use(res.middleware...)
	}
	for _, rt := range res.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}
