// Package http provides the HTTP server and handler implementations.
//
// This file builds HTMX responses: a small fluent API over the HX-Trigger
// header so mutation handlers produce consistent client events.
package http

import (
	"encoding/json"
	"net/http"
)

// HTMXResponseBuilder accumulates HX-Trigger events and response metadata.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerSettingsChanged fires the event the tabs partial listens on to
// re-render after a mutation.
func (b *HTMXResponseBuilder) TriggerSettingsChanged() *HTMXResponseBuilder {
	return b.Trigger("settings:changed", map[string]any{})
}

// Notify adds a show-notification trigger with the given type and message.
func (b *HTMXResponseBuilder) Notify(kind, message string) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     kind,
		"message":  message,
		"duration": 3000,
	})
}

// Body sets the response body.
func (b *HTMXResponseBuilder) Body(body []byte) *HTMXResponseBuilder {
	b.body = body
	return b
}

// Header sets an extra response header.
func (b *HTMXResponseBuilder) Header(key, value string) *HTMXResponseBuilder {
	b.headers[key] = value
	return b
}

// Write emits the accumulated response.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) error {
	if len(b.triggers) > 0 {
		payload, err := json.Marshal(b.triggers)
		if err != nil {
			return err
		}
		w.Header().Set("HX-Trigger", string(payload))
	}
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, err := w.Write(b.body)
		return err
	}
	return nil
}
