package models

import (
	"context"
	"sync"
	"time"

	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"
	"smartmarkers-service/internal/pkg/utils"
)

type MeasureStatus string

const (
	MeasureStatusPending    MeasureStatus = "pending"
	MeasureStatusInProgress MeasureStatus = "inProgress"
	MeasureStatusCompleted  MeasureStatus = "completed"
	MeasureStatusFailed     MeasureStatus = "failed"
)

// Measure pairs an instrument with the session's patient and server and
// keeps the reports produced by its task runs. Two measures are the same
// measure when their instruments share an identifier.
type Measure struct {
	mu         sync.RWMutex
	instrument Instrument
	status     MeasureStatus

	Patient *fhir_dto.Patient
	Server  *Server
	Reports *Reports
}

func NewMeasure(instrument Instrument, patient *fhir_dto.Patient, server *Server) *Measure {
	return &Measure{
		instrument: instrument,
		status:     MeasureStatusPending,
		Patient:    patient,
		Server:     server,
		Reports:    NewReports(instrument.Metadata().Identifier),
	}
}

func (m *Measure) Identifier() string {
	return m.instrument.Metadata().Identifier
}

func (m *Measure) Title() string {
	return m.instrument.Metadata().Title
}

func (m *Measure) Instrument() Instrument {
	return m.instrument
}

func (m *Measure) Equal(other *Measure) bool {
	if other == nil {
		return false
	}
	return m.Identifier() == other.Identifier()
}

func (m *Measure) Status() MeasureStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Measure) setStatus(status MeasureStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// PrepareTask asks the instrument for its task and checks the task is
// presentable.
func (m *Measure) PrepareTask(ctx context.Context) (*Task, error) {
	task, err := m.instrument.PrepareTask(ctx, m)
	if err != nil {
		m.setStatus(MeasureStatusFailed)
		return nil, exceptions.ErrPrepareTask(err, m.Identifier())
	}
	if err := ValidateTask(task); err != nil {
		m.setStatus(MeasureStatusFailed)
		return nil, err
	}
	if task.MeasureID == "" {
		task.MeasureID = m.Identifier()
	}
	m.setStatus(MeasureStatusInProgress)
	return task, nil
}

// Complete turns a finished task result into a submission bundle and
// appends it to the measure's reports. A nil bundle means the run produced
// nothing to submit.
func (m *Measure) Complete(ctx context.Context, result *TaskResult) (*SubmissionBundle, error) {
	bundle, err := m.instrument.GenerateResultBundle(ctx, m, result)
	if err != nil {
		m.setStatus(MeasureStatusFailed)
		return nil, exceptions.ErrGenerateResultBundle(err, m.Identifier())
	}
	m.setStatus(MeasureStatusCompleted)
	if bundle == nil || len(bundle.Entry) == 0 {
		return nil, nil
	}

	submission := NewSubmissionBundle(utils.GenerateTaskRunID(), m.Identifier(), bundle, time.Now())
	m.Reports.Add(submission)
	return submission, nil
}
