package utils

import (
	"smartmarkers-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

func GenerateSessionID() string {
	return uuid.NewString()
}

func GenerateTaskRunID() string {
	return uuid.NewString()
}

func GenerateUrnUUID() string {
	return constvars.FhirUrnUUIDPrefix + uuid.NewString()
}
