/*
Package dsl provides a Go DSL for programmatically constructing decision graphs.

It lets developers define decision trees with a fluent builder instead of
hand-writing JSON or YAML documents. This is particularly useful for
generated trees, unit tests and IDE autocompletion.

Example usage:

	b := dsl.New().Start("income")

	b.Add("income").
		When("Has stable income").
		Branch("yes", "approve").
		Branch("no", "deny")

	b.Add("approve").Decide("APPROVED")
	b.Add("deny").Decide("DENIED")

	g := b.Graph()
	report, err := engine.Analyze(ctx, "loan", g)
*/
package dsl
