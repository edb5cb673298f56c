// Package integration runs black-box tests against a live `calc serve`
// instance. Point CALC_URL and CALC_GRPC_ENDPOINT at it; tests skip when the
// server is not reachable.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// testServer holds the base URL of a running calculator instance.
var testServer string

func init() {
	testServer = os.Getenv("CALC_URL")
	if testServer == "" {
		testServer = "http://localhost:8787"
	}
	// Ensure the URL has a scheme.
	if !strings.HasPrefix(testServer, "http://") && !strings.HasPrefix(testServer, "https://") {
		testServer = "http://" + testServer
	}
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

// apiURL builds a full URL for the given API path.
func apiURL(path string) string {
	return strings.TrimRight(testServer, "/") + "/v1/" + path
}

// requireServer skips the test when no server answers at testServer.
func requireServer(t *testing.T) {
	t.Helper()
	resp, err := httpClient.Get(apiURL("evaluations"))
	if err != nil {
		t.Skipf("calculator not reachable at %s: %v", testServer, err)
	}
	resp.Body.Close()
}

// evaluate posts an expression and returns the status code and decoded body.
func evaluate(t *testing.T, expression string) (int, map[string]interface{}) {
	t.Helper()
	data, _ := json.Marshal(map[string]string{"expression": expression})

	resp, err := httpClient.Post(apiURL("evaluations"), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("evaluate HTTP error: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("evaluate decode error: %v (%s)", err, raw)
	}
	return resp.StatusCode, result
}

// assertResult checks that an evaluation succeeded with the expected value.
func assertResult(t *testing.T, expression string, want int64) {
	t.Helper()
	status, body := evaluate(t, expression)
	if status != http.StatusOK {
		t.Fatalf("%q: expected 200, got %d: %v", expression, status, body)
	}
	if body["state"] != "SUCCEEDED" {
		t.Fatalf("%q: expected SUCCEEDED, got %v", expression, body)
	}
	if got, _ := body["result"].(float64); int64(got) != want {
		t.Errorf("%q: got %v, want %d", expression, body["result"], want)
	}
}

// errorField returns a field of the "error" object in body.
func errorField(body map[string]interface{}, key string) interface{} {
	e, _ := body["error"].(map[string]interface{})
	return e[key]
}
