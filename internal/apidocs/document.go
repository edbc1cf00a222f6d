// Package apidocs builds and serves the OpenAPI description of the HTTP
// API. The description is either read from an embedded YAML file or
// generated from the operations the router declares next to its handlers.
package apidocs

const openAPIVersion = "3.0.3"

// Document is the subset of an OpenAPI 3 document the service produces.
type Document struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       Info                `json:"info" yaml:"info"`
	Servers    []Server            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components *Components         `json:"components,omitempty" yaml:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem maps a lower-case HTTP method to its operation.
type PathItem map[string]*Operation

type Operation struct {
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required,omitempty" yaml:"required,omitempty"`
	Content  map[string]MediaType `json:"content" yaml:"content"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type Response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type Schema struct {
	Ref        string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type       string             `json:"type,omitempty" yaml:"type,omitempty"`
	Format     string             `json:"format,omitempty" yaml:"format,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	Example    interface{}        `json:"example,omitempty" yaml:"example,omitempty"`
}

type Components struct {
	Schemas map[string]*Schema `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

// Ref points at a schema declared under components.
func Ref(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

// ArrayOf wraps item in an array schema.
func ArrayOf(item *Schema) *Schema {
	return &Schema{Type: "array", Items: item}
}

func IntegerSchema() *Schema {
	return &Schema{Type: "integer", Format: "int64"}
}

func StringSchema() *Schema {
	return &Schema{Type: "string"}
}

func PathParam(name, description string, schema *Schema) Parameter {
	return Parameter{Name: name, In: "path", Description: description, Required: true, Schema: schema}
}

func QueryParam(name, description string, schema *Schema) Parameter {
	return Parameter{Name: name, In: "query", Description: description, Schema: schema}
}

// JSONBody declares a required JSON request body.
func JSONBody(schema *Schema) *RequestBody {
	return &RequestBody{
		Required: true,
		Content:  map[string]MediaType{"application/json": {Schema: schema}},
	}
}

func JSONResponse(description string, schema *Schema) Response {
	return Response{
		Description: description,
		Content:     map[string]MediaType{"application/json": {Schema: schema}},
	}
}

func TextResponse(description string) Response {
	return Response{
		Description: description,
		Content:     map[string]MediaType{"text/plain": {Schema: StringSchema()}},
	}
}

func HTMLResponse(description string) Response {
	return Response{
		Description: description,
		Content:     map[string]MediaType{"text/html": {Schema: StringSchema()}},
	}
}
