package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up the read API routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	if s.config.API.AuthEnabled {
		r.Post("/auth/login", s.HandleLogin)
	}

	r.Group(func(r chi.Router) {
		if s.config.API.AuthEnabled {
			r.Use(s.authMiddleware)
		}

		r.Get("/last-uplink", s.HandleLastUplink)
		r.Get("/network-health", s.HandleNetworkHealth)

		// Gateways
		r.Route("/gateways", func(r chi.Router) {
			r.Get("/", s.HandleListGateways)
			r.Get("/health", s.HandleGatewaysHealth)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetGateway)
				r.Get("/metrics", s.HandleGatewayMetrics)
			})
		})

		// Devices
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.HandleListDevices)
			r.Get("/health", s.HandleDevicesHealth)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetDevice)
				r.Get("/metrics", s.HandleDeviceMetrics)
				r.Get("/uplinks", s.HandleDeviceUplinks)
			})
		})
	})
}
