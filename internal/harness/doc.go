// Package harness runs partition scenarios against compiled pattern specs.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: every_category
//	description: "One operand in each of the five categories"
//	specs: ../specs          # CUE directory, relative to this file
//	pattern: every_category  # pattern name in the specs
//	path: [0]                # optional: operand path to a nested commutative operation
//	expect:
//	  constant: [a]
//	  syntactic: ["f(x_)"]
//	  rest: ["fc2(x_)"]
//	  fixed:
//	    x: {min_count: 1, occurrences: 1, multiplicity: 1, constraints: []}
//	  sequence:
//	    x: {min_count: 1}
//	  fixed_length: 1
//	  sequence_min_length: 1
//
// An expectation that is omitted is not checked. When fixed or sequence is
// given, the set of variable names must match exactly; the anonymous
// placeholder is written "_". Setting error to a partition error code
// (WIDTH_MISMATCH, MALFORMED_PATTERN) expects partitioning to fail.
//
// # Deterministic Testing
//
// Constraint identity tokens come from testutil.CounterGenerator, and
// summaries name constraints rather than tokens, so a scenario produces
// byte-identical snapshots on every run. Golden snapshots live in
// testdata/golden and are compared with goldie.
package harness
