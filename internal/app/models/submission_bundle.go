package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/tidwall/gjson"
)

type SubmissionStatus string

const (
	SubmissionStatusNotSubmitted SubmissionStatus = "notSubmitted"
	SubmissionStatusShouldSubmit SubmissionStatus = "shouldSubmit"
	SubmissionStatusSubmitted    SubmissionStatus = "submitted"
	SubmissionStatusFailed       SubmissionStatus = "failed"
)

// SubmissionBundle wraps the FHIR bundle generated from one task run
// together with its submission state.
type SubmissionBundle struct {
	mu sync.RWMutex

	TaskRunID string
	MeasureID string
	Bundle    *fhir_dto.FHIRBundle
	CreatedAt time.Time

	status        SubmissionStatus
	failureReason string
	submittedAt   time.Time
}

func NewSubmissionBundle(taskRunID, measureID string, bundle *fhir_dto.FHIRBundle, createdAt time.Time) *SubmissionBundle {
	return &SubmissionBundle{
		TaskRunID: taskRunID,
		MeasureID: measureID,
		Bundle:    bundle,
		CreatedAt: createdAt,
		status:    SubmissionStatusNotSubmitted,
	}
}

func (b *SubmissionBundle) Status() SubmissionStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

func (b *SubmissionBundle) FailureReason() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failureReason
}

func (b *SubmissionBundle) SubmittedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.submittedAt
}

// MarkShouldSubmit flags the bundle for the next submission. Bundles that
// were already submitted are left alone.
func (b *SubmissionBundle) MarkShouldSubmit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status == SubmissionStatusSubmitted {
		return false
	}
	b.status = SubmissionStatusShouldSubmit
	b.failureReason = ""
	return true
}

func (b *SubmissionBundle) MarkSubmitted(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = SubmissionStatusSubmitted
	b.failureReason = ""
	b.submittedAt = at
}

func (b *SubmissionBundle) MarkFailed(reason error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = SubmissionStatusFailed
	if reason != nil {
		b.failureReason = reason.Error()
	}
}

func (b *SubmissionBundle) ResourceCount() int {
	if b.Bundle == nil {
		return 0
	}
	return len(b.Bundle.Entry)
}

// Summary lists resource types with their counts, e.g. "2 Observation, 1 QuestionnaireResponse".
func (b *SubmissionBundle) Summary() string {
	if b.Bundle == nil {
		return ""
	}
	counts := make(map[string]int)
	for _, entry := range b.Bundle.Entry {
		resourceType := gjson.GetBytes(entry.Resource, "resourceType").String()
		if resourceType == "" {
			resourceType = "Resource"
		}
		counts[resourceType]++
	}

	types := make([]string, 0, len(counts))
	for resourceType := range counts {
		types = append(types, resourceType)
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, resourceType := range types {
		parts = append(parts, fmt.Sprintf("%d %s", counts[resourceType], resourceType))
	}
	return strings.Join(parts, ", ")
}
