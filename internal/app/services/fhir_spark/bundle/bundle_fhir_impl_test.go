package bundle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func TestPostTransactionBundle(t *testing.T) {
	transaction := &fhir_dto.FHIRBundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeTransaction,
		Entry: []fhir_dto.Entry{{
			FullUrl:  "urn:uuid:1",
			Resource: []byte(`{"resourceType":"Observation"}`),
			Request:  &fhir_dto.EntryRequest{Method: "POST", Url: "Observation"},
		}},
	}

	t.Run("Successful transaction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, constvars.MIMEApplicationFHIRJSON, r.Header.Get(constvars.HeaderContentType))
			assert.Equal(t, "Bearer secret", r.Header.Get(constvars.HeaderAuthorization))
			assert.Equal(t, "req-1", r.Header.Get(constvars.HeaderXRequestID))
			assert.Equal(t, constvars.FhirBundleTypeTransaction, gjson.GetBytes(body, "type").String())
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"resourceType":"Bundle","type":"transaction-response","entry":[{"response":{"status":"201 Created","location":"Observation/9/_history/1"}}]}`))
		}))
		defer server.Close()

		client := NewBundleFhirClient(server.URL, "secret", 0, server.Client(), zap.NewNop())
		ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")

		response, err := client.PostTransactionBundle(ctx, transaction)

		assert.NoError(t, err)
		assert.Equal(t, constvars.FhirBundleTypeTransactionResponse, response.Type)
		assert.Equal(t, "201 Created", response.Entry[0].Response.Status)
	})

	t.Run("OperationOutcome diagnostics become the error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"resourceType":"OperationOutcome","issue":[{"severity":"error","diagnostics":"Observation.code is required"}]}`))
		}))
		defer server.Close()

		client := NewBundleFhirClient(server.URL, "", 0, server.Client(), zap.NewNop())

		_, err := client.PostTransactionBundle(context.Background(), transaction)

		assert.ErrorContains(t, err, "Observation.code is required")
		var customErr *exceptions.CustomError
		assert.True(t, errors.As(err, &customErr))
	})

	t.Run("Non FHIR failure still fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream down`))
		}))
		defer server.Close()

		client := NewBundleFhirClient(server.URL, "", 0, server.Client(), zap.NewNop())

		_, err := client.PostTransactionBundle(context.Background(), transaction)

		assert.ErrorContains(t, err, "unexpected status 502")
	})
}
