package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeDataMalformed, "Malformed Data Source",
		"parse error on line 3", "/api/dataset/reload").
		WithExtension("line", 3).
		WithExtension("type", "ignored")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, TypeDataMalformed, body["type"], "standard members win over extensions")
	assert.Equal(t, "Malformed Data Source", body["title"])
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, "parse error on line 3", body["detail"])
	assert.Equal(t, "/api/dataset/reload", body["instance"])
	assert.Equal(t, float64(3), body["line"])
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	data, err := json.Marshal(NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", ""))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
	assert.Len(t, body, 3)
}
