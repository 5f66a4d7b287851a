package crossref

import (
	"regexp"
	"sort"

	"github.com/zimbopro/svtools/parser"
	"github.com/zimbopro/svtools/terraform"
)

// placeholderPattern extracts ${var} template placeholders from an
// integration uri.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// The identifier graph links three identifier spaces: Terraform logical
// names, template-binding variable names, and OpenAPI path+method
// operations. Checks run over the graph rather than matching strings ad
// hoc, so each consistency rule stays independently testable.

// lambdaNode is a Terraform lambda definition with its incoming edges.
type lambdaNode struct {
	lambda      terraform.Lambda
	permissions []terraform.Permission
	bindings    []*bindingNode
}

// bindingNode is a template binding with edges to the operations whose
// integration uri references its variable.
type bindingNode struct {
	binding    terraform.Binding
	referenced []*pathNode
}

// pathNode is one path+method operation of the merged document.
type pathNode struct {
	op             parser.Operation
	hasIntegration bool
	hasURI         bool
	uri            string
	vars           []string // placeholder variables in declaration order
	covered        bool     // reached by at least one permission statement
}

// permissionEdge records the outcome of matching one permission statement
// against the document's operations.
type permissionEdge struct {
	permission terraform.Permission
	method     string
	path       string
	matched    bool // a method+path was extracted from source_arn
	ambiguous  bool
	target     *pathNode // nil when no operation matches
}

type graph struct {
	lambdas       []*lambdaNode
	lambdasByName map[string]*lambdaNode
	bindings      []*bindingNode
	paths         []*pathNode
	permissions   []permissionEdge
	// permissionNames are the keys of the model's permissions map, sorted
	// for deterministic orphan reporting
	permissionNames []string
}

// buildGraph links the merged document and the Terraform model into one
// identifier graph using the given ArnMatcher.
func buildGraph(doc *parser.Document, model *terraform.Model, matcher ArnMatcher) *graph {
	g := &graph{lambdasByName: make(map[string]*lambdaNode)}

	for _, l := range model.Lambdas {
		node := &lambdaNode{lambda: l, permissions: model.Permissions[l.Name]}
		g.lambdas = append(g.lambdas, node)
		g.lambdasByName[l.Name] = node
	}
	for name := range model.Permissions {
		g.permissionNames = append(g.permissionNames, name)
	}
	sort.Strings(g.permissionNames)

	bindingsByVar := make(map[string]*bindingNode, len(model.Bindings))
	for _, b := range model.Bindings {
		node := &bindingNode{binding: b}
		g.bindings = append(g.bindings, node)
		bindingsByVar[b.Var] = node
		if owner, ok := g.lambdasByName[b.Lambda]; ok {
			owner.bindings = append(owner.bindings, node)
		}
	}

	pathsByKey := make(map[string]*pathNode)
	for _, op := range doc.Operations() {
		node := &pathNode{op: op}
		if ext, ok := op.Integration(); ok {
			node.hasIntegration = true
			if uri, ok := ext["uri"].(string); ok {
				node.hasURI = true
				node.uri = uri
				for _, m := range placeholderPattern.FindAllStringSubmatch(uri, -1) {
					node.vars = append(node.vars, m[1])
					if b, ok := bindingsByVar[m[1]]; ok {
						b.referenced = append(b.referenced, node)
					}
				}
			}
		}
		g.paths = append(g.paths, node)
		pathsByKey[op.Method+" "+op.Path] = node
	}

	for _, name := range g.permissionNames {
		for _, p := range model.Permissions[name] {
			edge := permissionEdge{permission: p}
			method, path, ok, ambiguous := matcher.Match(p.SourceARN)
			edge.matched = ok
			edge.ambiguous = ambiguous
			if ok {
				edge.method = method
				edge.path = path
				if target, exists := pathsByKey[method+" "+path]; exists {
					edge.target = target
					target.covered = true
				}
			}
			g.permissions = append(g.permissions, edge)
		}
	}
	return g
}
