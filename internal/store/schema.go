package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions in the shape ent's migrate package expects. Every event
// table starts with the shared id/sequence/timestamp columns.

func eventColumns(extra ...*schema.Column) []*schema.Column {
	base := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(base, extra...)
}

func textColumn(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: 2147483647, Default: ""}
}

var (
	llmRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		textColumn("error_message"),
		textColumn("request_body"),
		textColumn("response_body"),
	)
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		},
	}

	diagnosisRunsColumns = eventColumns(
		&schema.Column{Name: "run_id", Type: field.TypeString, Unique: true},
		&schema.Column{Name: "goal", Type: field.TypeString},
		&schema.Column{Name: "format", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "targets", Type: field.TypeInt, Default: 0},
		textColumn("structure"),
	)
	diagnosisRunsTable = &schema.Table{
		Name:       "diagnosis_runs",
		Columns:    diagnosisRunsColumns,
		PrimaryKey: []*schema.Column{diagnosisRunsColumns[0]},
	}

	diagnosisEventsColumns = eventColumns(
		&schema.Column{Name: "run_id", Type: field.TypeString},
		&schema.Column{Name: "position", Type: field.TypeInt},
		&schema.Column{Name: "node", Type: field.TypeString},
		textColumn("path"),
		textColumn("children"),
		&schema.Column{Name: "grade", Type: field.TypeString},
		textColumn("grade_text"),
		textColumn("summary"),
		textColumn("suggestion"),
		textColumn("example"),
		textColumn("detail"),
		textColumn("raw"),
		textColumn("advisory"),
		textColumn("error_message"),
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
	)
	diagnosisEventsTable = &schema.Table{
		Name:       "diagnosis_events",
		Columns:    diagnosisEventsColumns,
		PrimaryKey: []*schema.Column{diagnosisEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "diagnosisevent_run_id", Columns: []*schema.Column{diagnosisEventsColumns[3]}},
		},
	}

	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	tables = []*schema.Table{
		globalSequenceTable,
		llmRequestEventsTable,
		diagnosisRunsTable,
		diagnosisEventsTable,
	}
)
