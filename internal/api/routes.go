package api

import (
	"net/http"

	"github.com/JaimeStill/estate/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Users.Handler().Routes(),
		domain.Properties.Handler(runtime.MaxUploadSize).Routes(),
	)
}
