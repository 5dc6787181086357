//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

const swaggerTemplate = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "description": "{{escape .Description}}", "version": "{{.Version}}"},
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "paths": {
    "/transfers": {
      "get": {"summary": "List transfers", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
      "post": {"summary": "Start a transfer", "consumes": ["application/json"], "produces": ["application/json"],
        "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}, "503": {"description": "Service Unavailable"}}}
    },
    "/transfers/{id}": {
      "get": {"summary": "Get a transfer", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
      "delete": {"summary": "Cancel a transfer", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"202": {"description": "Accepted"}, "404": {"description": "Not Found"}}}
    },
    "/status": {"get": {"summary": "Aggregate progress", "responses": {"200": {"description": "OK"}}}},
    "/events": {"get": {"summary": "Websocket stream of normalized events", "responses": {"101": {"description": "Switching Protocols"}}}}
  }
}`

// SwaggerInfo holds exported Swagger info for the API document.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "faspmgr API",
	Description:      "HTTP control surface for managed file transfers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the API document and UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
