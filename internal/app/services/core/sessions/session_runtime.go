package sessions

import (
	"sync"
	"time"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/app/services/navigation"
	"smartmarkers-service/internal/app/services/session"
	"smartmarkers-service/internal/pkg/dto/responses"
)

// sessionRuntime is everything the process keeps for one live session.
type sessionRuntime struct {
	session      *models.Session
	preparation  *session.Preparation
	passcodeHash string
	failures     []responses.PreparationFailure
	warning      string

	mu         sync.Mutex
	lastAccess time.Time
}

func (rt *sessionRuntime) touch(now time.Time) {
	rt.mu.Lock()
	rt.lastAccess = now
	rt.mu.Unlock()
}

func (rt *sessionRuntime) idleSince() time.Time {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.lastAccess
}

func (rt *sessionRuntime) summary() *responses.Session {
	container := rt.preparation.Container
	items := container.Items()

	summary := &responses.Session{
		SessionID:  rt.session.ID,
		VerifyUser: rt.session.VerifyUser,
		CreatedAt:  rt.session.CreatedAt,
		Position:   container.Position(),
		Dismissed:  container.Dismissed(),
		Items:      make([]responses.SessionItem, 0, len(items)),
		Failures:   rt.failures,
		Warning:    rt.warning,
	}
	if rt.session.Patient != nil {
		summary.PatientID = rt.session.Patient.ID
	}
	if rt.session.Server != nil {
		summary.Server = rt.session.Server.DisplayName()
	}
	for _, item := range items {
		summary.Items = append(summary.Items, sessionItem(item))
	}
	return summary
}

func sessionItem(item navigation.Item) responses.SessionItem {
	out := responses.SessionItem{
		ID:    item.ID,
		Kind:  string(item.Kind),
		Title: item.Title,
		Task:  item.Task,
	}
	if item.Measure != nil {
		out.MeasureStatus = string(item.Measure.Status())
	}
	return out
}
