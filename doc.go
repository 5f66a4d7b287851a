// Package svtools cross-validates the configuration artifacts of an AWS
// API-Gateway-backed-by-Lambda deployment: one or more OpenAPI documents and
// the Terraform files that wire the gateway to its Lambda functions.
//
// The library consists of five primary packages:
//
//   - parser: Load OpenAPI documents and resolve $ref pointers
//   - merger: Merge multiple resolved documents into one
//   - validator: Structural OpenAPI compliance checks
//   - terraform: Extract a typed model from the Terraform files
//   - crossref: Cross-reference the merged document against the model
//
// # Quick Start
//
// Resolve and merge OpenAPI documents:
//
//	import "github.com/zimbopro/svtools/parser"
//	import "github.com/zimbopro/svtools/merger"
//
//	doc, err := parser.Parse(
//		parser.WithFilePath("api.yaml"),
//		parser.WithResolveRefs(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Extract the Terraform model and cross-validate:
//
//	import "github.com/zimbopro/svtools/terraform"
//	import "github.com/zimbopro/svtools/crossref"
//
//	model, err := terraform.Extract("./infra")
//	if err != nil {
//		log.Fatal(err)
//	}
//	report := crossref.Validate(doc, model)
//	if report.HasFatal() {
//		fmt.Print(report.Render())
//	}
//
// The svtools CLI wires these packages into a single verify pipeline; see
// cmd/svtools.
package svtools
