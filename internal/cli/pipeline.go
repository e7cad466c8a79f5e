package cli

import (
	"github.com/mrz1836/veritas/internal/config"
	"github.com/mrz1836/veritas/internal/correlate"
	"github.com/mrz1836/veritas/internal/domain"
	"github.com/mrz1836/veritas/internal/registry"
)

// buildRegistry converts configured steps into a validated registry.
// When strict is set, advisory steps are promoted to critical so their
// failures gate the verdict and block dependents.
func buildRegistry(steps []config.StepConfig, strict bool) (*registry.Registry, error) {
	reg := registry.New()
	for _, sc := range steps {
		if err := reg.Register(toDomainStep(sc, strict)); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// toDomainStep maps a StepConfig onto the domain step type.
func toDomainStep(sc config.StepConfig, strict bool) domain.Step {
	severity := domain.Severity(sc.Severity)
	if severity == "" {
		severity = domain.SeverityCritical
	}
	if strict {
		severity = domain.SeverityCritical
	}

	return domain.Step{
		ID:        sc.ID,
		Command:   sc.Command,
		DependsOn: append([]string(nil), sc.DependsOn...),
		Timeout:   sc.Timeout,
		Retry: domain.RetryPolicy{
			MaxAttempts:    sc.Retry.MaxAttempts,
			Backoff:        sc.Retry.Backoff,
			MaxBackoff:     sc.Retry.MaxBackoff,
			RetryOnTimeout: sc.Retry.RetryOnTimeout,
		},
		Severity: severity,
	}
}

// scopeMapFor returns the claim scope mapping: the configured one when
// present, otherwise the built-in mapping for the default pipeline.
func scopeMapFor(cfg *config.Config) correlate.ScopeMap {
	if len(cfg.Claims.ScopeMap) > 0 {
		m := make(correlate.ScopeMap, len(cfg.Claims.ScopeMap))
		for scope, ids := range cfg.Claims.ScopeMap {
			m[scope] = append([]string(nil), ids...)
		}
		return m
	}
	return correlate.DefaultScopeMap()
}
