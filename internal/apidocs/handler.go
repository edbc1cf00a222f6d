package apidocs

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/patric-chuzhbe/usuaris/internal/logger"
)

var uiTemplate = template.Must(template.New("ui").Parse(`<!DOCTYPE html>
<html lang="ca">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      window.ui = SwaggerUIBundle({url: "{{.DocumentURL}}", dom_id: "#swagger-ui"});
    };
  </script>
</body>
</html>
`))

// Handler serves one Document. The encodings are computed once.
type Handler struct {
	title       string
	documentURL string
	jsonBody    []byte
	yamlBody    []byte
}

// NewHandler prepares doc for serving. documentURL is the absolute path of the
// JSON encoding, which the UI page loads.
func NewHandler(doc *Document, documentURL string) (*Handler, error) {
	jsonBody, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("in internal/apidocs/handler.go/NewHandler(): error while `json.MarshalIndent()` calling: %w", err)
	}

	yamlBody, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("in internal/apidocs/handler.go/NewHandler(): error while `yaml.Marshal()` calling: %w", err)
	}

	return &Handler{
		title:       doc.Info.Title,
		documentURL: documentURL,
		jsonBody:    jsonBody,
		yamlBody:    yamlBody,
	}, nil
}

func (h *Handler) ServeUI(res http.ResponseWriter, req *http.Request) {
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := uiTemplate.Execute(res, struct {
		Title       string
		DocumentURL string
	}{h.title, h.documentURL})
	if err != nil {
		logger.Log.Errorw("error while rendering the API docs page", "err", err)
	}
}

func (h *Handler) ServeJSON(res http.ResponseWriter, req *http.Request) {
	res.Header().Set("Content-Type", "application/json")
	_, err := res.Write(h.jsonBody)
	if err != nil {
		logger.Log.Debugln("error while writing the API description", "err", err)
	}
}

func (h *Handler) ServeYAML(res http.ResponseWriter, req *http.Request) {
	res.Header().Set("Content-Type", "application/yaml")
	_, err := res.Write(h.yamlBody)
	if err != nil {
		logger.Log.Debugln("error while writing the API description", "err", err)
	}
}
