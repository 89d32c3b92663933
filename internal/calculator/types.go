package calculator

import (
	"encoding/json"
	"math"
)

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Result     Number `json:"result"`
	Steps      []Step `json:"steps"`
}

// Step records one operator resolution, in evaluation order.
type Step struct {
	Op     string `json:"op"`
	Left   Number `json:"left"`
	Right  Number `json:"right"`
	Result Number `json:"result"`
}

// BatchRequest is the JSON body for POST /calculator/batch.
type BatchRequest struct {
	Expressions []string `json:"expressions"`
}

// BatchResponse is the JSON response for POST /calculator/batch.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// BatchResult holds either the value or the error of one expression.
type BatchResult struct {
	Expression string  `json:"expression"`
	Result     *Number `json:"result,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Number is a float64 that survives JSON encoding when it is not finite:
// infinities and NaN are written as the strings "+Inf", "-Inf" and "NaN".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}
