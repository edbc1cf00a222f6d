// Package router holds the HTTP surface of the service: the chi routing
// table, the handlers and the OpenAPI declaration of every route.
package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/patric-chuzhbe/usuaris/internal/apidocs"
	"github.com/patric-chuzhbe/usuaris/internal/config"
	"github.com/patric-chuzhbe/usuaris/internal/gzippedhttp"
	"github.com/patric-chuzhbe/usuaris/internal/ipchecker"
	"github.com/patric-chuzhbe/usuaris/internal/logger"
	"github.com/patric-chuzhbe/usuaris/internal/models"
)

const apiDocsPath = "/api-docs"

type usersReader interface {
	ListAll(ctx context.Context) ([]models.User, error)

	Filter(ctx context.Context, filter models.Filter) ([]models.User, error)

	FindByID(ctx context.Context, id int64) (models.User, error)

	Count(ctx context.Context) (int64, error)
}

type usersWriter interface {
	Create(ctx context.Context, payload models.UserPayload) (models.User, error)

	Update(ctx context.Context, id int64, payload models.UserPayload) (models.User, error)

	Delete(ctx context.Context, id int64) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type userStore interface {
	usersReader
	usersWriter
	pinger
}

type trustedSubnetGuard interface {
	TrustedOnly(h http.Handler) http.Handler
}

// Router serves the user records over HTTP.
type Router struct {
	store  userStore
	format models.RecordFormat
	docs   *apidocs.Registry
}

type initOptions struct {
	apiDocs   string
	ipChecker trustedSubnetGuard
}

type InitOption func(*initOptions)

// WithAPIDocs selects how /api-docs is served: config.APIDocsNone,
// config.APIDocsStatic or config.APIDocsGenerated (the default).
func WithAPIDocs(mode string) InitOption {
	return func(options *initOptions) {
		options.apiDocs = mode
	}
}

// WithIPChecker guards the internal endpoints. Without it nobody is trusted.
func WithIPChecker(checker trustedSubnetGuard) InitOption {
	return func(options *initOptions) {
		options.ipChecker = checker
	}
}

// New builds the routing table. attrName is the wire name of the numeric
// attribute, both in bodies and in the query string.
func New(store userStore, attrName string, optionsProto ...InitOption) (*chi.Mux, error) {
	options := &initOptions{
		apiDocs: config.APIDocsGenerated,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}
	if options.ipChecker == nil {
		options.ipChecker = &ipchecker.IPChecker{}
	}

	myRouter := &Router{
		store:  store,
		format: models.NewRecordFormat(attrName),
		docs:   apidocs.NewRegistry(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		recoverer,
		middleware.StripSlashes,
		middleware.GetHead,
		gzippedhttp.Middleware,
	)
	router.NotFound(routeNotFound)
	router.MethodNotAllowed(routeNotFound)

	myRouter.declareRoutes(router, options.ipChecker)

	if err := myRouter.mountAPIDocs(router, options.apiDocs); err != nil {
		return nil, err
	}

	return router, nil
}

func (r *Router) handle(
	router chi.Router,
	method string,
	path string,
	operation apidocs.Operation,
	handler http.Handler,
) {
	r.docs.Add(method, path, operation)
	router.Method(method, path, handler)
}

func (r *Router) declareRoutes(router chi.Router, guard trustedSubnetGuard) {
	attr := r.format.AttrName
	idParam := apidocs.PathParam("id", "Identificador de l'usuari", apidocs.IntegerSchema())

	r.handle(router, http.MethodGet, "/", apidocs.Operation{
		Summary:   "Pàgina inicial",
		Responses: map[string]apidocs.Response{"200": apidocs.HTMLResponse("Títol de l'aplicació")},
	}, http.HandlerFunc(r.GetRoot))

	r.handle(router, http.MethodGet, "/usuaris", apidocs.Operation{
		Summary: "Llista o filtra els usuaris",
		Tags:    []string{"usuaris"},
		Parameters: []apidocs.Parameter{
			apidocs.QueryParam("nom", "Nom exacte", apidocs.StringSchema()),
			apidocs.QueryParam(attr, "Valor exacte de l'atribut", apidocs.IntegerSchema()),
		},
		Responses: map[string]apidocs.Response{
			"200": apidocs.JSONResponse("Usuaris", apidocs.ArrayOf(apidocs.Ref(apidocs.UserSchemaName))),
			"404": apidocs.TextResponse(msgNoUsersMatched),
		},
	}, http.HandlerFunc(r.GetUsuaris))

	r.handle(router, http.MethodPost, "/usuaris", apidocs.Operation{
		Summary:     "Crea un usuari",
		Tags:        []string{"usuaris"},
		RequestBody: apidocs.JSONBody(apidocs.Ref(apidocs.UserInputSchemaName)),
		Responses: map[string]apidocs.Response{
			"201": apidocs.JSONResponse("Usuari creat", apidocs.Ref(apidocs.UserSchemaName)),
			"500": apidocs.TextResponse(msgInternalError),
		},
	}, http.HandlerFunc(r.PostUsuaris))

	r.handle(router, http.MethodGet, "/usuaris/{id}", apidocs.Operation{
		Summary:    "Obté un usuari",
		Tags:       []string{"usuaris"},
		Parameters: []apidocs.Parameter{idParam},
		Responses: map[string]apidocs.Response{
			"200": apidocs.JSONResponse("Usuari", apidocs.Ref(apidocs.UserSchemaName)),
			"404": apidocs.TextResponse(msgUserNotFound),
		},
	}, http.HandlerFunc(r.GetUsuari))

	r.handle(router, http.MethodPut, "/usuaris/{id}", apidocs.Operation{
		Summary:     "Substitueix un usuari",
		Tags:        []string{"usuaris"},
		Parameters:  []apidocs.Parameter{idParam},
		RequestBody: apidocs.JSONBody(apidocs.Ref(apidocs.UserInputSchemaName)),
		Responses: map[string]apidocs.Response{
			"200": apidocs.JSONResponse("Usuari actualitzat", apidocs.Ref(apidocs.UserSchemaName)),
			"404": apidocs.TextResponse(msgUserNotFound),
		},
	}, http.HandlerFunc(r.PutUsuari))

	r.handle(router, http.MethodDelete, "/usuaris/{id}", apidocs.Operation{
		Summary:    "Esborra un usuari",
		Tags:       []string{"usuaris"},
		Parameters: []apidocs.Parameter{idParam},
		Responses: map[string]apidocs.Response{
			"200": apidocs.TextResponse("Usuari esborrat"),
			"404": apidocs.TextResponse(msgUserNotFound),
		},
	}, http.HandlerFunc(r.DeleteUsuari))

	r.handle(router, http.MethodGet, "/ping", apidocs.Operation{
		Summary: "Comprova l'emmagatzematge",
		Tags:    []string{"servei"},
		Responses: map[string]apidocs.Response{
			"200": {Description: "Disponible"},
			"500": apidocs.TextResponse(msgInternalError),
		},
	}, http.HandlerFunc(r.GetPing))

	r.handle(router, http.MethodGet, "/api/internal/stats", apidocs.Operation{
		Summary: "Estadístiques internes",
		Tags:    []string{"servei"},
		Responses: map[string]apidocs.Response{
			"200": apidocs.JSONResponse("Nombre d'usuaris", &apidocs.Schema{
				Type:       "object",
				Properties: map[string]*apidocs.Schema{"usuaris": apidocs.IntegerSchema()},
			}),
			"403": {Description: "Fora de la subxarxa de confiança"},
		},
	}, guard.TrustedOnly(http.HandlerFunc(r.GetInternalStats)))
}

func (r *Router) mountAPIDocs(router chi.Router, mode string) error {
	var (
		doc *apidocs.Document
		err error
	)

	switch mode {
	case config.APIDocsNone:
		return nil
	case config.APIDocsStatic:
		doc, err = apidocs.Static(r.format.AttrName)
		if err != nil {
			return fmt.Errorf("in internal/router/router.go/mountAPIDocs(): error while `apidocs.Static()` calling: %w", err)
		}
	case config.APIDocsGenerated:
		doc = r.docs.Document(apidocs.Info{
			Title:       "Usuaris API",
			Version:     "1.0.0",
			Description: "Gestió d'usuaris",
		}, r.format.AttrName)
	default:
		return fmt.Errorf("unknown API docs mode %q", mode)
	}

	docsHandler, err := apidocs.NewHandler(doc, apiDocsPath+"/openapi.json")
	if err != nil {
		return fmt.Errorf("in internal/router/router.go/mountAPIDocs(): error while `apidocs.NewHandler()` calling: %w", err)
	}

	router.Get(apiDocsPath, docsHandler.ServeUI)
	router.Get(apiDocsPath+"/openapi.json", docsHandler.ServeJSON)
	router.Get(apiDocsPath+"/openapi.yaml", docsHandler.ServeYAML)

	return nil
}
