package apidocs

import (
	"strings"
	"sync"
)

const (
	UserSchemaName      = "Usuari"
	UserInputSchemaName = "UsuariInput"
)

type route struct {
	method    string
	path      string
	operation Operation
}

// Registry collects the operations declared by the router and turns them
// into a Document.
type Registry struct {
	mu     sync.Mutex
	routes []route
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add declares an operation. path uses the router syntax ("/usuaris/{id}"),
// which is also the OpenAPI one.
func (r *Registry) Add(method, path string, operation Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = append(r.routes, route{
		method:    strings.ToLower(method),
		path:      path,
		operation: operation,
	})
}

// Document builds the description of every declared operation. attrName
// names the numeric attribute in the record schemas.
func (r *Registry) Document(info Info, attrName string) *Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make(map[string]PathItem, len(r.routes))
	for _, rt := range r.routes {
		item, ok := paths[rt.path]
		if !ok {
			item = PathItem{}
			paths[rt.path] = item
		}
		operation := rt.operation
		item[rt.method] = &operation
	}

	return &Document{
		OpenAPI: openAPIVersion,
		Info:    info,
		Paths:   paths,
		Components: &Components{
			Schemas: UserSchemas(attrName),
		},
	}
}

// UserSchemas returns the record schemas for the given attribute name.
func UserSchemas(attrName string) map[string]*Schema {
	return map[string]*Schema{
		UserSchemaName: {
			Type: "object",
			Properties: map[string]*Schema{
				"id":     {Type: "integer", Format: "int64", Example: 1},
				"nom":    {Type: "string", Example: "Joan"},
				attrName: {Type: "integer", Format: "int64", Example: 30},
			},
		},
		UserInputSchemaName: {
			Type: "object",
			Properties: map[string]*Schema{
				"nom":    {Type: "string", Example: "Ramon"},
				attrName: {Type: "integer", Format: "int64", Example: 50},
			},
		},
	}
}
