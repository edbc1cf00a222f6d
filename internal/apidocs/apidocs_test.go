package apidocs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStatic(t *testing.T) {
	tests := []struct {
		name     string
		attrName string
	}{
		{name: "default attribute", attrName: "edat"},
		{name: "alternative attribute", attrName: "alcada"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, err := Static(test.attrName)
			require.NoError(t, err)

			assert.Equal(t, "3.0.3", doc.OpenAPI)
			require.Contains(t, doc.Paths, "/usuaris")
			require.Contains(t, doc.Paths, "/usuaris/{id}")
			assert.Contains(t, doc.Paths["/usuaris"], "get")
			assert.Contains(t, doc.Paths["/usuaris"], "post")
			assert.Contains(t, doc.Paths["/usuaris/{id}"], "delete")

			params := doc.Paths["/usuaris"]["get"].Parameters
			require.Len(t, params, 2)
			assert.Equal(t, test.attrName, params[1].Name)

			require.NotNil(t, doc.Components)
			assert.Contains(t, doc.Components.Schemas[UserSchemaName].Properties, test.attrName)
			assert.Equal(t, "#/components/schemas/Usuari",
				doc.Paths["/usuaris/{id}"]["get"].Responses["200"].Content["application/json"].Schema.Ref)
		})
	}
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := Parse([]byte("openapi: 3.0.3\ninfo:\n  title: x\n  version: \"1\"\n"))
	assert.ErrorIs(t, err, errEmptyDocument)

	_, err = Parse([]byte("paths: [unclosed"))
	assert.Error(t, err)
}

func TestRegistryDocument(t *testing.T) {
	registry := NewRegistry()
	registry.Add(http.MethodGet, "/usuaris", Operation{
		Summary:    "list",
		Parameters: []Parameter{QueryParam("nom", "", StringSchema())},
		Responses:  map[string]Response{"200": JSONResponse("ok", ArrayOf(Ref(UserSchemaName)))},
	})
	registry.Add(http.MethodPost, "/usuaris", Operation{
		Summary:     "create",
		RequestBody: JSONBody(Ref(UserInputSchemaName)),
		Responses:   map[string]Response{"201": JSONResponse("created", Ref(UserSchemaName))},
	})
	registry.Add(http.MethodDelete, "/usuaris/{id}", Operation{
		Parameters: []Parameter{PathParam("id", "", IntegerSchema())},
		Responses:  map[string]Response{"200": TextResponse("deleted")},
	})

	doc := registry.Document(Info{Title: "Usuaris", Version: "1"}, "alcada")

	assert.Equal(t, openAPIVersion, doc.OpenAPI)
	require.Len(t, doc.Paths, 2)
	assert.Equal(t, "list", doc.Paths["/usuaris"]["get"].Summary)
	assert.Equal(t, "create", doc.Paths["/usuaris"]["post"].Summary)
	assert.True(t, doc.Paths["/usuaris/{id}"]["delete"].Parameters[0].Required)
	assert.Contains(t, doc.Components.Schemas[UserSchemaName].Properties, "alcada")
	assert.NotContains(t, doc.Components.Schemas[UserSchemaName].Properties, "edat")
}

func TestHandler(t *testing.T) {
	doc, err := Static("edat")
	require.NoError(t, err)
	h, err := NewHandler(doc, "/api-docs/openapi.json")
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeJSON(rec, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.json", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
		assert.Equal(t, "3.0.3", decoded["openapi"])
		assert.Contains(t, rec.Body.String(), `"edat"`)
	})

	t.Run("yaml", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeYAML(rec, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.yaml", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var decoded Document
		require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &decoded))
		assert.Equal(t, doc.Info.Title, decoded.Info.Title)
		assert.Len(t, decoded.Paths, len(doc.Paths))
	})

	t.Run("ui", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeUI(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "openapi.json")
		assert.Contains(t, rec.Body.String(), "SwaggerUIBundle")
	})
}
