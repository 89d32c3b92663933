package calculator

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"infix-evaluator/internal/testutil"
)

func initTestMetrics(t *testing.T) {
	t.Helper()
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}
}

func post(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	return testutil.ExecuteRequest(req, h)
}

func TestEvaluateReturnsResultAndSteps(t *testing.T) {
	initTestMetrics(t)

	w := post(t, Evaluate, "/calculator/evaluate", `{"expression":"(2+3}*4"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp struct {
		Expression string  `json:"expression"`
		Result     float64 `json:"result"`
		Steps      []struct {
			Op     string  `json:"op"`
			Left   float64 `json:"left"`
			Right  float64 `json:"right"`
			Result float64 `json:"result"`
		} `json:"steps"`
	}
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Result != 20 {
		t.Fatalf("expected result 20, got %v", resp.Result)
	}
	if resp.Expression != "(2+3}*4" {
		t.Fatalf("expected expression echoed back, got %q", resp.Expression)
	}
	if len(resp.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(resp.Steps))
	}
	if s := resp.Steps[0]; s.Op != "+" || s.Left != 2 || s.Right != 3 || s.Result != 5 {
		t.Fatalf("unexpected first step %+v", s)
	}
	if s := resp.Steps[1]; s.Op != "*" || s.Left != 5 || s.Right != 4 || s.Result != 20 {
		t.Fatalf("unexpected second step %+v", s)
	}
}

func TestEvaluateNestedBrackets(t *testing.T) {
	initTestMetrics(t)

	w := post(t, Evaluate, "/calculator/evaluate", `{"expression":"((2)+(3))*(4)"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp struct {
		Result float64 `json:"result"`
		Steps  []struct {
			Op string `json:"op"`
		} `json:"steps"`
	}
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Result != 20 {
		t.Fatalf("expected result 20, got %v", resp.Result)
	}
	if len(resp.Steps) != 2 || resp.Steps[0].Op != "+" || resp.Steps[1].Op != "*" {
		t.Fatalf("unexpected steps %+v", resp.Steps)
	}
}

func TestEvaluateLiteralHasNoSteps(t *testing.T) {
	initTestMetrics(t)

	w := post(t, Evaluate, "/calculator/evaluate", `{"expression":"5"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)

	steps, ok := payload["steps"].([]any)
	if !ok || len(steps) != 0 {
		t.Fatalf("expected empty steps array, got %#v", payload["steps"])
	}
}

func TestEvaluateInvalidExpression(t *testing.T) {
	initTestMetrics(t)

	tests := []struct {
		expr string
		want string
	}{
		{expr: "2 3", want: "multiple operands"},
		{expr: "2++3", want: "two operators"},
		{expr: "(+2)", want: "opening bracket"},
		{expr: "2)", want: "unmatched closing bracket"},
		{expr: "2 x", want: "unrecognized symbol: x"},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			body, _ := json.Marshal(EvaluateRequest{Expression: tc.expr})
			w := post(t, Evaluate, "/calculator/evaluate", string(body))
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			testutil.DecodeJSONBody(t, w.Body, &resp)
			if !strings.Contains(resp["error"], tc.want) {
				t.Fatalf("expected error containing %q, got %q", tc.want, resp["error"])
			}
		})
	}
}

func TestEvaluateInvalidBody(t *testing.T) {
	initTestMetrics(t)

	w := post(t, Evaluate, "/calculator/evaluate", `{"expression":`)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp["error"] != "invalid request body" {
		t.Fatalf("expected %q, got %q", "invalid request body", resp["error"])
	}
}

func TestEvaluateDivisionByZeroEncodesInfinity(t *testing.T) {
	initTestMetrics(t)

	w := post(t, Evaluate, "/calculator/evaluate", `{"expression":"1/0"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)
	if payload["result"] != "+Inf" {
		t.Fatalf("expected result %q, got %#v", "+Inf", payload["result"])
	}
}

func TestBatchMixesResultsAndErrors(t *testing.T) {
	initTestMetrics(t)

	body, _ := json.Marshal(BatchRequest{Expressions: []string{"2*3^2", "2++3", "3-2"}})
	w := post(t, Batch, "/calculator/batch", string(body))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp struct {
		Results []struct {
			Expression string   `json:"expression"`
			Result     *float64 `json:"result"`
			Error      string   `json:"error"`
		} `json:"results"`
	}
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	if r := resp.Results[0]; r.Result == nil || *r.Result != 18 || r.Error != "" {
		t.Fatalf("unexpected first result %+v", r)
	}
	if r := resp.Results[1]; r.Result != nil || !strings.Contains(r.Error, "two operators") {
		t.Fatalf("unexpected second result %+v", r)
	}
	if r := resp.Results[2]; r.Result == nil || *r.Result != 1 {
		t.Fatalf("unexpected third result %+v", r)
	}
}

func TestBatchRejectsEmptyList(t *testing.T) {
	initTestMetrics(t)

	w := post(t, Batch, "/calculator/batch", `{"expressions":[]}`)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestNumberMarshalJSON(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode([]Number{1.5, Number(math.Inf(1)), Number(math.Inf(-1)), Number(math.NaN())}); err != nil {
		t.Fatalf("encoding numbers: %v", err)
	}

	want := `[1.5,"+Inf","-Inf","NaN"]` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
