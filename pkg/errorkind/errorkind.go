// Package errorkind names the error taxonomy a workflow run can produce.
package errorkind

// Kind identifies which category of failure an error record belongs to.
type Kind string

const (
	Validation    Kind = "validation_error"
	Compile       Kind = "compile_error"
	Reference     Kind = "reference_error"
	Mapping       Kind = "mapping_error"
	Condition     Kind = "condition_error"
	Executor      Kind = "executor_error"
	Timeout       Kind = "timeout_error"
	RouterNoMatch Kind = "router_no_match_error"
	OutputSchema  Kind = "output_schema_error"
)
