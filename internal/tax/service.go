package tax

import (
	"context"
	"errors"

	validator "github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/taxy/internal/obs"
)

// Service answers tax calculations against a fixed registry.
type Service struct {
	registry *Registry
	validate *validator.Validate
	tracer   trace.Tracer
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Registry *Registry
}

// NewService constructs a Service. A nil registry falls back to the built-in regimes.
func NewService(cfg ServiceConfig) *Service {
	reg := cfg.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Service{
		registry: reg,
		validate: newValidator(),
		tracer:   otel.Tracer("taxy/tax"),
	}
}

// Calculate computes the full report for income under the named regime.
func (s *Service) Calculate(ctx context.Context, regimeName string, income float64) (TaxReport, error) {
	_, span := s.tracer.Start(ctx, "tax.calculate", trace.WithAttributes(
		attribute.String("tax.regime", regimeName),
		attribute.Float64("tax.income", income),
	))
	defer span.End()

	report, err := s.calculate(regimeName, income)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result := "invalid"
		if errors.Is(err, ErrRegimeNotFound) {
			result = "not_found"
		}
		obs.ObserveTaxCalculation(s.regimeLabel(regimeName), result, 0, 0)
		return TaxReport{}, err
	}

	span.SetAttributes(
		attribute.Float64("tax.payable", report.TotalPayableTax),
		attribute.Int("tax.slabs", len(report.Slabs)),
	)
	obs.ObserveTaxCalculation(regimeName, "ok", report.TotalPayableTax, len(report.Slabs))
	return report, nil
}

// regimeLabel bounds metric cardinality to registered regime names.
func (s *Service) regimeLabel(name string) string {
	if _, err := s.registry.Lookup(name); err != nil {
		return "unknown"
	}
	return name
}

func (s *Service) calculate(regimeName string, income float64) (TaxReport, error) {
	if err := s.validate.Struct(CalculateRequest{Regime: regimeName, Income: income}); err != nil {
		return TaxReport{}, validationError(err)
	}
	regime, err := s.registry.Lookup(regimeName)
	if err != nil {
		return TaxReport{}, err
	}
	return regime.Compute(income), nil
}

// Regime returns a single registered regime.
func (s *Service) Regime(name string) (Regime, error) {
	return s.registry.Lookup(name)
}

// Regimes lists the registered regimes ordered by name.
func (s *Service) Regimes() []Regime {
	return s.registry.Regimes()
}
