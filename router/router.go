package router

import "net/http"

// Router is the minimal surface the application needs from an HTTP mux.
// Implementations live in subpackages so the concrete mux stays swappable.
type Router interface {
	http.Handler

	Handle(method, path string, handler http.Handler)
	HandleFunc(method, path string, handler func(http.ResponseWriter, *http.Request))
}
