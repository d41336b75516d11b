package adaptiveengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFindForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "registration", user)
		assert.Equal(t, "token", pass)
		if r.URL.Path != "/Forms/96FE494D-F176-4EFB-A473-2AB406610626.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"Name":"PROMIS Bank v1.2 - Physical Function","Items":[
			{"ID":"PFA11","Order":1,"Elements":[
				{"ElementOID":"E1","Description":"Are you able to do chores such as vacuuming or yard work?"},
				{"ElementOID":"E2","Description":"Container","Map":[{"ItemResponseOID":"R5","Value":"5","Description":"Without any difficulty"}]}
			]}]}`))
	}))
	defer server.Close()

	client := NewAdaptiveEngineClient(server.URL, "registration", "token", server.Client(), zap.NewNop())

	form, err := client.FindForm(context.Background(), "96FE494D-F176-4EFB-A473-2AB406610626")

	assert.NoError(t, err)
	assert.Equal(t, "96FE494D-F176-4EFB-A473-2AB406610626", form.OID)
	assert.Len(t, form.Items, 1)
	assert.Equal(t, "R5", form.Items[0].Elements[1].Map[0].ItemResponseOID)

	_, err = client.FindForm(context.Background(), "unknown")
	assert.ErrorContains(t, err, "unexpected status 404")
}
