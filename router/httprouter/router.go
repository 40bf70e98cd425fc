package httprouter

import (
	"net/http"

	jshttprouter "github.com/julienschmidt/httprouter"

	"github.com/orlanda/accounts/router"
)

// Implementation of the router interface
type Router struct {
	rt *jshttprouter.Router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

func (r *Router) Handle(method, path string, handler http.Handler) {
	r.rt.Handler(method, path, handler)
}

func (r *Router) HandleFunc(method, path string, handler func(http.ResponseWriter, *http.Request)) {
	r.rt.Handle(method, path, func(w http.ResponseWriter, req *http.Request, _ jshttprouter.Params) {
		handler(w, req)
	})
}

func New() router.Router {
	return &Router{rt: jshttprouter.New()}
}
