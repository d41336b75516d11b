package routers

import (
	"fmt"
	"smartmarkers-service/internal/app/config"
	"smartmarkers-service/internal/app/delivery/http/middlewares"
	"smartmarkers-service/internal/app/services/core/sessions"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	sessionController *sessions.SessionController,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   strings.Split(internalConfig.App.CorsAllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	normalLimiter, createSessionLimiter := middlewares.CreateRateLimiters()
	router.Use(normalLimiter)

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(middlewares.Log))
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.BodyLimit)

	endpointPrefix := fmt.Sprintf("/%s", strings.Trim(internalConfig.App.EndpointPrefix, "/"))
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			r.Route("/sessions", func(r chi.Router) {
				attachSessionRoutes(r, middlewares, createSessionLimiter, sessionController)
			})
		})
	})
}
