package terraform

// Lambda is one entry of the locals.lambdas block.
type Lambda struct {
	// Name is the logical name (the map key, e.g. "lambda-1")
	Name string
	// Handler is the lambda handler attribute
	Handler string
}

// Permission is one statement of a locals.lambdas_permissions entry.
type Permission struct {
	// Name is the logical name the statement belongs to
	Name string
	// StatementID is the statement_id attribute
	StatementID string
	// Principal is the principal attribute
	Principal string
	// SourceARN is the raw source_arn text, interpolations preserved
	// verbatim (e.g. "${aws_api_gateway_rest_api.this.execution_arn}/*/POST/v1/lambda/endpoint1")
	SourceARN string
}

// Binding is one entry of the templatefile argument map in the API-Gateway
// module block.
type Binding struct {
	// Var is the template variable name (e.g. "lambda_1_arn")
	Var string
	// Expr is the raw referenced expression text
	// (e.g. `module.lambda["lambda-1"].lambda_arn`)
	Expr string
	// Lambda is the logical name extracted from Expr when it matches the
	// module.lambda["<name>"].lambda_arn pattern; empty otherwise
	Lambda string
}

// Model is the typed view of the three Terraform files. Logical names in
// Permissions are not assumed to exist in Lambdas; the cross-reference
// validator checks that.
type Model struct {
	// Lambdas holds the lambda definitions in declaration order,
	// logical names unique
	Lambdas []Lambda
	// Permissions maps logical name to its permission statements in
	// declaration order
	Permissions map[string][]Permission
	// Bindings holds the template bindings in declaration order
	Bindings []Binding
}

// HasLambda reports whether a lambda with the given logical name is defined.
func (m *Model) HasLambda(name string) bool {
	for _, l := range m.Lambdas {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Binding returns the binding for the given template variable name.
func (m *Model) Binding(varName string) (Binding, bool) {
	for _, b := range m.Bindings {
		if b.Var == varName {
			return b, true
		}
	}
	return Binding{}, false
}
