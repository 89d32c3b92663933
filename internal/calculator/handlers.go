package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"infix-evaluator/internal/infix"
	"infix-evaluator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// ---------------------------------------------------------------------------
// Handler — single expression
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate
func Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// --- 1. Custom child span ---
	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// --- 2. Decode request body ---
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.String("calculator.expression", req.Expression))

	// --- 3. Evaluate (timed for histogram) ---
	result, steps, elapsed, err := evaluate(ctx, span, req.Expression)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, infix.ErrInvalidExpression) {
			status = http.StatusInternalServerError
		}
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, status, w)
		return
	}

	// --- 4. Record metrics ---
	attrs := metric.WithAttributes(attribute.String("operation", "evaluate"))
	evalCounter.Add(ctx, 1, attrs)
	evalHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	// --- 5. Span event with the result ---
	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Int("resolutions", len(steps)),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	// --- 6. Structured log with trace correlation ---
	logger.Info("expression evaluated",
		zap.String("expression", req.Expression),
		zap.Float64("result", result),
		zap.Int("resolutions", len(steps)),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	// --- 7. Write JSON response ---
	resp := EvaluateResponse{
		Expression: req.Expression,
		Result:     Number(result),
		Steps:      steps,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// evaluate runs one independent evaluation of expr. Every resolution is
// recorded as an event on span and counted per operator.
func evaluate(ctx context.Context, span trace.Span, expr string) (float64, []Step, float64, error) {
	steps := make([]Step, 0)
	hook := infix.WithResolutionHook(func(res infix.Resolution) {
		op := string(res.Op)
		span.AddEvent("operator.resolved", trace.WithAttributes(
			attribute.String("operator", op),
			attribute.Float64("left", res.Left),
			attribute.Float64("right", res.Right),
			attribute.Float64("result", res.Result),
		))
		resolutionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operator", op)))
		steps = append(steps, Step{
			Op:     op,
			Left:   Number(res.Left),
			Right:  Number(res.Right),
			Result: Number(res.Result),
		})
	})

	start := time.Now()
	result, err := infix.EvaluateString(expr, hook)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	return result, steps, elapsed, err
}

// ---------------------------------------------------------------------------
// Handler — batch of expressions (demonstrates nested spans)
// ---------------------------------------------------------------------------

// Batch handles POST /calculator/batch — evaluates every expression with its
// own evaluator under a child span. Invalid expressions are reported per
// entry and do not fail the request.
func Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// Parent span for the entire batch
	ctx, span := tracer.Start(ctx, "calculator.batch",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// Decode
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "batch", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Expressions) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "batch", "no expressions provided", fmt.Errorf("expressions array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("batch.size", len(req.Expressions)))

	results := make([]BatchResult, 0, len(req.Expressions))
	failed := 0

	for i, expr := range req.Expressions {
		// --- Child span per expression ---
		itemCtx, itemSpan := tracer.Start(ctx, fmt.Sprintf("calculator.batch.item.%d", i),
			trace.WithAttributes(
				attribute.Int("batch.item.index", i),
				attribute.String("calculator.expression", expr),
			),
		)

		result, steps, elapsed, err := evaluate(itemCtx, itemSpan, expr)
		if err != nil {
			itemSpan.RecordError(err)
			itemSpan.SetStatus(codes.Error, err.Error())
			itemSpan.End()

			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "batch")))
			logger.Warn("batch expression rejected",
				zap.Int("index", i),
				zap.String("expression", expr),
				zap.Error(err),
				zap.String("request_id", requestID),
			)

			failed++
			results = append(results, BatchResult{Expression: expr, Error: err.Error()})
			continue
		}

		attrs := metric.WithAttributes(attribute.String("operation", "batch"))
		evalCounter.Add(ctx, 1, attrs)
		evalHistogram.Record(ctx, elapsed, attrs)

		itemSpan.SetAttributes(attribute.Float64("calculator.result", result))
		itemSpan.SetStatus(codes.Ok, "")
		itemSpan.End()

		logger.Info("batch expression evaluated",
			zap.Int("index", i),
			zap.String("expression", expr),
			zap.Float64("result", result),
			zap.Int("resolutions", len(steps)),
			zap.Float64("duration_ms", elapsed),
		)

		n := Number(result)
		results = append(results, BatchResult{Expression: expr, Result: &n})
	}

	span.AddEvent("batch.complete", trace.WithAttributes(
		attribute.Int("total", len(req.Expressions)),
		attribute.Int("failed", failed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("batch evaluation completed",
		zap.Int("total", len(req.Expressions)),
		zap.Int("failed", failed),
		zap.String("request_id", requestID),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(BatchResponse{Results: results})
}
