// Package crossref validates the merged OpenAPI document against the
// Terraform model.
//
// It builds an identifier graph over three identifier spaces — Terraform
// logical names, template-binding variable names, and OpenAPI path+method
// operations — and runs independent consistency checks over it. Checks never
// short-circuit: findings accumulate so a single run reports every
// inconsistency. Re-running on identical inputs yields a byte-identical
// report.
package crossref

import (
	"fmt"

	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/internal/severity"
	"github.com/zimbopro/svtools/parser"
	"github.com/zimbopro/svtools/terraform"
)

// Finding is a single cross-reference finding.
type Finding = findings.Finding

// Report is an ordered sequence of findings.
type Report = findings.Report

// Option configures a validation run.
type Option func(*config)

type config struct {
	matcher ArnMatcher
}

// WithMatcher replaces the source_arn matcher. The default is
// [DefaultMatcher].
func WithMatcher(m ArnMatcher) Option {
	return func(cfg *config) {
		cfg.matcher = m
	}
}

// Validate cross-references the merged document against the Terraform model
// and returns the accumulated report. The report is immutable once returned.
func Validate(doc *parser.Document, model *terraform.Model, opts ...Option) *Report {
	cfg := &config{matcher: DefaultMatcher{}}
	for _, opt := range opts {
		opt(cfg)
	}

	g := buildGraph(doc, model, cfg.matcher)
	report := &Report{}
	checkLambdaPermissionCompleteness(g, report)
	checkDuplicateHandlers(g, report)
	checkPermissionPaths(g, report)
	checkBindingLambdas(g, report)
	checkIntegrationBindings(g, report)
	checkUnusedBindings(g, report)
	checkUncoveredPaths(g, report)
	return report
}

// checkLambdaPermissionCompleteness verifies that every lambda has at least
// one permission statement and that every permission entry names a defined
// lambda.
func checkLambdaPermissionCompleteness(g *graph, report *Report) {
	for _, node := range g.lambdas {
		if len(node.permissions) == 0 {
			report.Add(Finding{
				Kind:     findings.KindOrphanLambda,
				Severity: severity.SeverityError,
				Name:     node.lambda.Name,
				File:     terraform.LambdaFile,
				Message:  "lambda has no permission statement",
			})
		}
	}
	for _, name := range g.permissionNames {
		if _, ok := g.lambdasByName[name]; !ok {
			report.Add(Finding{
				Kind:     findings.KindOrphanPermission,
				Severity: severity.SeverityError,
				Name:     name,
				File:     terraform.PermissionsFile,
				Message:  "permission entry names a lambda that is not defined",
			})
		}
	}
}

// checkDuplicateHandlers reports pairs of lambdas sharing one handler.
func checkDuplicateHandlers(g *graph, report *Report) {
	for i, a := range g.lambdas {
		for _, b := range g.lambdas[i+1:] {
			if a.lambda.Handler == b.lambda.Handler {
				report.Add(Finding{
					Kind:     findings.KindDuplicateHandler,
					Severity: severity.SeverityError,
					Name:     b.lambda.Name,
					File:     terraform.LambdaFile,
					Message:  fmt.Sprintf("handler %q is already used by lambda %q", b.lambda.Handler, a.lambda.Name),
				})
			}
		}
	}
}

// checkPermissionPaths verifies that each permission statement's source_arn
// fragment resolves to a path+method present in the merged document.
func checkPermissionPaths(g *graph, report *Report) {
	for _, edge := range g.permissions {
		if !edge.matched {
			report.Add(Finding{
				Kind:     findings.KindPermissionPathMismatch,
				Severity: severity.SeverityError,
				Name:     edge.permission.Name,
				File:     terraform.PermissionsFile,
				Message:  fmt.Sprintf("no HTTP method marker found in source_arn %q", edge.permission.SourceARN),
			})
			continue
		}
		if edge.ambiguous {
			report.Add(Finding{
				Kind:     findings.KindAmbiguousSourceARN,
				Severity: severity.SeverityWarning,
				Name:     edge.permission.Name,
				File:     terraform.PermissionsFile,
				Message:  fmt.Sprintf("multiple HTTP method markers in source_arn %q; using the last", edge.permission.SourceARN),
			})
		}
		if edge.target == nil {
			report.Add(Finding{
				Kind:     findings.KindPermissionPathMismatch,
				Severity: severity.SeverityError,
				Name:     edge.permission.Name,
				Path:     edge.path,
				File:     terraform.PermissionsFile,
				Message:  fmt.Sprintf("no %s operation for path %s in the merged document", edge.method, edge.path),
			})
		}
	}
}

// checkBindingLambdas verifies that every binding whose expression names a
// logical lambda references a defined lambda. Bindings whose expressions do
// not match the reference pattern are opaque and skipped.
func checkBindingLambdas(g *graph, report *Report) {
	for _, node := range g.bindings {
		if node.binding.Lambda == "" {
			continue
		}
		if _, ok := g.lambdasByName[node.binding.Lambda]; !ok {
			report.Add(Finding{
				Kind:     findings.KindUnboundTemplateVariable,
				Severity: severity.SeverityError,
				Name:     node.binding.Var,
				File:     terraform.APIGatewayFile,
				Message:  fmt.Sprintf("binding references undefined lambda %q", node.binding.Lambda),
			})
		}
	}
}

// checkIntegrationBindings verifies that every operation carries the
// integration extension with a uri, and that each ${var} placeholder in the
// uri has a template binding.
func checkIntegrationBindings(g *graph, report *Report) {
	bound := make(map[string]bool, len(g.bindings))
	for _, node := range g.bindings {
		bound[node.binding.Var] = true
	}
	for _, node := range g.paths {
		location := node.op.Method + " " + node.op.Path
		if !node.hasIntegration {
			report.Add(Finding{
				Kind:     findings.KindMissingIntegration,
				Severity: severity.SeverityError,
				Path:     location,
				Message:  "operation has no " + parser.IntegrationExtension + " extension",
			})
			continue
		}
		if !node.hasURI {
			report.Add(Finding{
				Kind:     findings.KindMissingIntegrationURI,
				Severity: severity.SeverityError,
				Path:     location,
				Message:  "integration extension has no uri",
			})
			continue
		}
		for _, v := range node.vars {
			if !bound[v] {
				report.Add(Finding{
					Kind:     findings.KindUnboundIntegrationVariable,
					Severity: severity.SeverityError,
					Path:     location,
					Name:     v,
					Message:  fmt.Sprintf("integration uri references template variable %q with no binding", v),
				})
			}
		}
	}
}

// checkUnusedBindings warns about bindings no integration uri references.
// Terraform may intentionally over-provision, so this is not fatal.
func checkUnusedBindings(g *graph, report *Report) {
	for _, node := range g.bindings {
		if len(node.referenced) == 0 {
			report.Add(Finding{
				Kind:     findings.KindUnusedTemplateBinding,
				Severity: severity.SeverityWarning,
				Name:     node.binding.Var,
				File:     terraform.APIGatewayFile,
				Message:  "template binding is not referenced by any integration uri",
			})
		}
	}
}

// checkUncoveredPaths reports operations no permission statement covers:
// such an operation cannot be invoked once deployed.
func checkUncoveredPaths(g *graph, report *Report) {
	for _, node := range g.paths {
		if !node.covered {
			report.Add(Finding{
				Kind:     findings.KindUncoveredPath,
				Severity: severity.SeverityError,
				Path:     node.op.Method + " " + node.op.Path,
				Message:  "no permission statement covers this operation",
			})
		}
	}
}
