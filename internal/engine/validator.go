package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"curia-backend/internal/metadata"
)

// lookupConcurrency bounds the reference probes one request runs at once.
const lookupConcurrency = 4

// Validator checks required fields and reference codes before a write.
type Validator struct {
	resolver *Resolver
	metrics  *Metrics
}

func NewValidator(r *Resolver, m *Metrics) *Validator {
	return &Validator{resolver: r, metrics: m}
}

// CheckRequired reports every required field missing from a create payload.
func CheckRequired(entity *metadata.Entity, payload map[string]any) *AppError {
	var missing []string
	for _, name := range entity.RequiredFields() {
		if isEmpty(payload[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return MissingFieldsError(missing)
	}
	return nil
}

type lookupResult struct {
	label string
	found bool
}

// ResolveReferences checks every reference field present in payload and
// returns the resolved labels keyed by their label field. Misses are reported
// together, in field order.
func (v *Validator) ResolveReferences(ctx context.Context, entity *metadata.Entity, payload map[string]any) (map[string]string, error) {
	fields := entity.LookupFields()
	results := make([]lookupResult, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, f := range fields {
		if isEmpty(payload[f.Name]) {
			results[i].found = true
			continue
		}
		code := stringValue(payload[f.Name])
		g.Go(func() error {
			res, err := v.lookup(gctx, f.Lookup, code)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	labels := make(map[string]string)
	var details []ErrorDetail
	status := 0
	for i, f := range fields {
		res := results[i]
		if res.found {
			if f.Lookup.Label != "" {
				labels[f.Lookup.Label] = res.label
			}
			continue
		}

		code := stringValue(payload[f.Name])
		v.metrics.referenceMiss(f.Lookup.Source())
		if f.Lookup.Soft {
			log.Printf("WARN: %s.%s: unknown %s code %q kept as given", entity.Name, f.Name, f.Lookup.Source(), code)
			continue
		}
		if status == 0 {
			status = f.Lookup.Status
		}
		details = append(details, ErrorDetail{
			Field:    f.Name,
			Value:    code,
			Category: f.Lookup.Source(),
			Message:  missMessage(f, code),
		})
	}

	if len(details) > 0 {
		if status == 0 {
			status = http.StatusNotFound
		}
		return nil, ReferenceError(status, details)
	}
	return labels, nil
}

func (v *Validator) lookup(ctx context.Context, l *metadata.Lookup, code string) (lookupResult, error) {
	if l.Category != "" {
		label, err := v.resolver.Resolve(ctx, l.Category, code)
		if errors.Is(err, ErrReferenceNotFound) {
			return lookupResult{}, nil
		}
		if err != nil {
			return lookupResult{}, err
		}
		return lookupResult{label: label, found: true}, nil
	}

	ok, err := v.resolver.Exists(ctx, l.Table, l.Column, code)
	if err != nil {
		return lookupResult{}, err
	}
	return lookupResult{found: ok}, nil
}

func missMessage(f metadata.Field, code string) string {
	if f.Lookup.Category != "" {
		return fmt.Sprintf("Invalid %s: %s is not a %q reference code", f.Name, code, f.Lookup.Category)
	}
	return fmt.Sprintf("Invalid %s: %s not found in %s", f.Name, code, f.Lookup.Table)
}
