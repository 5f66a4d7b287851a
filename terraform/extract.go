// Package terraform extracts a typed model from the Terraform files of an
// API-Gateway-backed-by-Lambda deployment.
//
// Exactly three files are read: lambda.tf (the locals.lambdas block),
// lambda_permissions.tf (the locals.lambdas_permissions block), and
// api_gateway.tf (the API-Gateway module block wiring template variables to
// lambda ARNs through a templatefile call). No attempt is made to evaluate
// Terraform expressions beyond capturing literal text; attribute values that
// embed interpolations are retained verbatim.
package terraform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/zimbopro/svtools/sverrors"
)

// File names expected inside the Terraform directory.
const (
	LambdaFile      = "lambda.tf"
	PermissionsFile = "lambda_permissions.tf"
	APIGatewayFile  = "api_gateway.tf"
)

var (
	// apiGatewayModulePattern matches the label of the API-Gateway module block.
	apiGatewayModulePattern = regexp.MustCompile(`(?i)api[-_]?gateway`)
	// lambdaARNPattern extracts the logical name from a binding expression.
	lambdaARNPattern = regexp.MustCompile(`module\.lambda\["([^"]+)"\]\.lambda_arn`)
)

// Extract parses the three expected Terraform files under dir into a Model.
// A missing file or block is a *sverrors.ExtractError with Kind=MissingBlock;
// a block lacking a required attribute is Kind=MalformedBlock.
func Extract(dir string) (*Model, error) {
	lambdas, err := extractLambdas(filepath.Join(dir, LambdaFile))
	if err != nil {
		return nil, err
	}
	permissions, err := extractPermissions(filepath.Join(dir, PermissionsFile))
	if err != nil {
		return nil, err
	}
	bindings, err := extractBindings(filepath.Join(dir, APIGatewayFile))
	if err != nil {
		return nil, err
	}
	return &Model{
		Lambdas:     lambdas,
		Permissions: permissions,
		Bindings:    bindings,
	}, nil
}

// parseFile reads and parses one Terraform file, returning its syntax body
// and raw bytes (needed to slice expression source text).
func parseFile(path string) (*hclsyntax.Body, []byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &sverrors.ExtractError{
				Kind:    sverrors.MissingBlock,
				File:    path,
				Message: "file does not exist",
			}
		}
		return nil, nil, &sverrors.ParseError{Path: path, Message: "failed to read file", Cause: err}
	}

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, nil, parseError(path, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, nil, &sverrors.ParseError{Path: path, Message: "unexpected body type"}
	}
	return body, src, nil
}

// parseError converts HCL diagnostics into a ParseError carrying the first
// diagnostic's location.
func parseError(path string, diags hcl.Diagnostics) error {
	e := &sverrors.ParseError{Path: path, Message: diags.Error()}
	if len(diags) > 0 && diags[0].Subject != nil {
		e.Line = diags[0].Subject.Start.Line
		e.Column = diags[0].Subject.Start.Column
	}
	return e
}

// localsAttribute finds the named attribute inside any locals block.
func localsAttribute(body *hclsyntax.Body, name string) *hclsyntax.Attribute {
	for _, block := range body.Blocks {
		if block.Type != "locals" {
			continue
		}
		if attr, ok := block.Body.Attributes[name]; ok {
			return attr
		}
	}
	return nil
}

// extractLambdas reads the locals.lambdas block: map key is the logical
// name, handler attribute is required, extra attributes are ignored.
func extractLambdas(path string) ([]Lambda, error) {
	body, src, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	attr := localsAttribute(body, "lambdas")
	if attr == nil {
		return nil, &sverrors.ExtractError{
			Kind:  sverrors.MissingBlock,
			File:  path,
			Block: "locals.lambdas",
		}
	}
	obj, ok := attr.Expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, &sverrors.ExtractError{
			Kind:    sverrors.MalformedBlock,
			File:    path,
			Block:   "locals.lambdas",
			Message: "value must be a map of lambda definitions",
		}
	}

	var lambdas []Lambda
	seen := make(map[string]bool)
	for _, item := range obj.Items {
		name, ok := keyString(item.KeyExpr)
		if !ok {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "locals.lambdas",
				Message: "map key is not a static name",
			}
		}
		if seen[name] {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "locals.lambdas." + name,
				Message: "duplicate logical name",
			}
		}
		seen[name] = true

		entry, ok := item.ValueExpr.(*hclsyntax.ObjectConsExpr)
		if !ok {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "locals.lambdas." + name,
				Message: "lambda definition must be a map",
			}
		}
		handler, ok := objectAttributeText(entry, "handler", src)
		if !ok {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "locals.lambdas." + name,
				Message: "missing required attribute handler",
			}
		}
		lambdas = append(lambdas, Lambda{Name: name, Handler: handler})
	}
	return lambdas, nil
}

// requiredPermissionAttrs are the attributes every permission statement carries.
var requiredPermissionAttrs = []string{"statement_id", "principal", "source_arn"}

// extractPermissions reads the locals.lambdas_permissions block: map key is
// the logical name, value is a list of statements with statement_id,
// principal, and source_arn required on each.
func extractPermissions(path string) (map[string][]Permission, error) {
	body, src, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	attr := localsAttribute(body, "lambdas_permissions")
	if attr == nil {
		return nil, &sverrors.ExtractError{
			Kind:  sverrors.MissingBlock,
			File:  path,
			Block: "locals.lambdas_permissions",
		}
	}
	obj, ok := attr.Expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, &sverrors.ExtractError{
			Kind:    sverrors.MalformedBlock,
			File:    path,
			Block:   "locals.lambdas_permissions",
			Message: "value must be a map of statement lists",
		}
	}

	permissions := make(map[string][]Permission)
	for _, item := range obj.Items {
		name, ok := keyString(item.KeyExpr)
		if !ok {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "locals.lambdas_permissions",
				Message: "map key is not a static name",
			}
		}
		list, ok := item.ValueExpr.(*hclsyntax.TupleConsExpr)
		if !ok {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "lambdas_permissions." + name,
				Message: "value must be a list of statements",
			}
		}
		for i, element := range list.Exprs {
			statement, ok := element.(*hclsyntax.ObjectConsExpr)
			if !ok {
				return nil, &sverrors.ExtractError{
					Kind:    sverrors.MalformedBlock,
					File:    path,
					Block:   fmt.Sprintf("lambdas_permissions.%s[%d]", name, i),
					Message: "statement must be a map",
				}
			}
			values := make(map[string]string, len(requiredPermissionAttrs))
			for _, required := range requiredPermissionAttrs {
				value, ok := objectAttributeText(statement, required, src)
				if !ok {
					return nil, &sverrors.ExtractError{
						Kind:    sverrors.MalformedBlock,
						File:    path,
						Block:   fmt.Sprintf("lambdas_permissions.%s[%d].%s", name, i, required),
						Message: "missing required attribute",
					}
				}
				values[required] = value
			}
			permissions[name] = append(permissions[name], Permission{
				Name:        name,
				StatementID: values["statement_id"],
				Principal:   values["principal"],
				SourceARN:   values["source_arn"],
			})
		}
	}
	return permissions, nil
}

// extractBindings finds the API-Gateway module block and reads the second
// argument of its templatefile call: each key becomes a template binding
// variable, each value is retained as opaque expression text.
func extractBindings(path string) ([]Binding, error) {
	body, src, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	for _, block := range body.Blocks {
		if block.Type != "module" || len(block.Labels) == 0 {
			continue
		}
		if !apiGatewayModulePattern.MatchString(block.Labels[0]) {
			continue
		}
		call := findTemplatefileCall(block.Body)
		if call == nil {
			continue
		}
		if len(call.Args) < 2 {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "module." + block.Labels[0],
				Message: "templatefile call has no variable map argument",
			}
		}
		vars, ok := call.Args[1].(*hclsyntax.ObjectConsExpr)
		if !ok {
			return nil, &sverrors.ExtractError{
				Kind:    sverrors.MalformedBlock,
				File:    path,
				Block:   "module." + block.Labels[0],
				Message: "templatefile second argument must be a map",
			}
		}

		var bindings []Binding
		for _, item := range vars.Items {
			varName, ok := keyString(item.KeyExpr)
			if !ok {
				return nil, &sverrors.ExtractError{
					Kind:    sverrors.MalformedBlock,
					File:    path,
					Block:   "module." + block.Labels[0],
					Message: "templatefile variable key is not a static name",
				}
			}
			expr := exprText(src, item.ValueExpr)
			binding := Binding{Var: varName, Expr: expr}
			if m := lambdaARNPattern.FindStringSubmatch(expr); m != nil {
				binding.Lambda = m[1]
			}
			bindings = append(bindings, binding)
		}
		return bindings, nil
	}

	return nil, &sverrors.ExtractError{
		Kind:    sverrors.MissingBlock,
		File:    path,
		Block:   "module",
		Message: "no API-Gateway module block with a templatefile call",
	}
}

// findTemplatefileCall searches a block body's attributes for a direct
// templatefile(...) call.
func findTemplatefileCall(body *hclsyntax.Body) *hclsyntax.FunctionCallExpr {
	for _, attr := range body.Attributes {
		if call, ok := attr.Expr.(*hclsyntax.FunctionCallExpr); ok && call.Name == "templatefile" {
			return call
		}
	}
	return nil
}

// keyString extracts a static object key: either a bare identifier keyword
// or a quoted string literal. Logical names like "lambda-1" are not valid
// HCL identifiers, so quoted keys are the common case.
func keyString(expr hclsyntax.Expression) (string, bool) {
	if wrapped, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		if kw := hcl.ExprAsKeyword(wrapped.Wrapped); kw != "" {
			return kw, true
		}
		expr = wrapped.Wrapped
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || v.IsNull() || !v.Type().Equals(cty.String) {
		return "", false
	}
	return v.AsString(), true
}

// objectAttributeText finds the named key inside an object expression and
// returns its value as source text.
func objectAttributeText(obj *hclsyntax.ObjectConsExpr, name string, src []byte) (string, bool) {
	for _, item := range obj.Items {
		key, ok := keyString(item.KeyExpr)
		if !ok || key != name {
			continue
		}
		return exprText(src, item.ValueExpr), true
	}
	return "", false
}

// exprText slices the raw source text of an expression, stripping the
// surrounding quotes of string templates. Interpolation sequences survive
// verbatim, which is all the cross-reference checks need.
func exprText(src []byte, expr hclsyntax.Expression) string {
	text := strings.TrimSpace(string(expr.Range().SliceBytes(src)))
	return strings.Trim(text, `"`)
}
