package models

import (
	"encoding/json"
	"time"
)

type StepKind string

const (
	StepKindInstruction  StepKind = "instruction"
	StepKindQuestion     StepKind = "question"
	StepKindForm         StepKind = "form"
	StepKindAdaptive     StepKind = "adaptive"
	StepKindDeviceFetch  StepKind = "device_fetch"
	StepKindVerification StepKind = "verification"
	StepKindReview       StepKind = "review"
	StepKindConsent      StepKind = "consent"
	StepKindProgress     StepKind = "progress"
	StepKindCompletion   StepKind = "completion"
)

type AnswerFormat string

const (
	AnswerFormatNone         AnswerFormat = ""
	AnswerFormatSingleChoice AnswerFormat = "single_choice"
	AnswerFormatMultiChoice  AnswerFormat = "multi_choice"
	AnswerFormatText         AnswerFormat = "text"
	AnswerFormatNumeric      AnswerFormat = "numeric"
	AnswerFormatBoolean      AnswerFormat = "boolean"
	AnswerFormatPayload      AnswerFormat = "payload"
)

type Choice struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
}

type FormItem struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Format  AnswerFormat `json:"format"`
	Choices []Choice     `json:"choices,omitempty"`
}

type Step struct {
	ID        string       `json:"id"`
	Kind      StepKind     `json:"kind"`
	Title     string       `json:"title,omitempty"`
	Text      string       `json:"text,omitempty"`
	Format    AnswerFormat `json:"format,omitempty"`
	Choices   []Choice     `json:"choices,omitempty"`
	FormItems []FormItem   `json:"form_items,omitempty"`
	Optional  bool         `json:"optional,omitempty"`
	Terminal  bool         `json:"terminal,omitempty"`
}

type Task struct {
	ID        string `json:"id"`
	MeasureID string `json:"measure_id,omitempty"`
	Title     string `json:"title"`
	Steps     []Step `json:"steps"`
}

func (t *Task) Step(stepID string) (*Step, bool) {
	for i := range t.Steps {
		if t.Steps[i].ID == stepID {
			return &t.Steps[i], true
		}
	}
	return nil, false
}

// StepResult is the answer accumulated for one step. Only the fields that
// match the step's answer format are set.
type StepResult struct {
	StepID  string          `json:"step_id"`
	Choices []string        `json:"choices,omitempty"`
	Text    *string         `json:"text,omitempty"`
	Number  *float64        `json:"number,omitempty"`
	Boolean *bool           `json:"boolean,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (r StepResult) FirstChoice() (string, bool) {
	if len(r.Choices) == 0 {
		return "", false
	}
	return r.Choices[0], true
}

type TaskResult struct {
	TaskID      string                `json:"task_id"`
	StartDate   time.Time             `json:"start_date"`
	EndDate     time.Time             `json:"end_date"`
	StepResults map[string]StepResult `json:"step_results"`
}

func (r *TaskResult) Result(stepID string) (StepResult, bool) {
	if r == nil || r.StepResults == nil {
		return StepResult{}, false
	}
	result, ok := r.StepResults[stepID]
	return result, ok
}
