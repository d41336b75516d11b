package routers

import (
	"net/http"
	"smartmarkers-service/internal/app/delivery/http/middlewares"
	"smartmarkers-service/internal/app/services/core/sessions"

	"github.com/go-chi/chi/v5"
)

func attachSessionRoutes(router chi.Router, middlewares *middlewares.Middlewares, createSessionLimiter func(http.Handler) http.Handler, sessionController *sessions.SessionController) {
	router.Use(middlewares.APIKeyAuth)

	router.With(createSessionLimiter).Post("/", sessionController.CreateSession)
	router.Get("/{session_id}", sessionController.GetSession)
	router.Delete("/{session_id}", sessionController.EndSession)

	router.Post("/{session_id}/tasks/{task_id}/complete", sessionController.CompleteTask)

	router.Get("/{session_id}/submission", sessionController.GetSubmissionStep)
	router.Post("/{session_id}/submission/answer", sessionController.AnswerSubmissionStep)
	router.Post("/{session_id}/submission/back", sessionController.BackSubmissionStep)
	router.Get("/{session_id}/submissions", sessionController.ListSubmissions)

	router.Post("/{session_id}/navigation/next", sessionController.NavigateNext)
	router.Post("/{session_id}/navigation/back", sessionController.NavigateBack)
}
