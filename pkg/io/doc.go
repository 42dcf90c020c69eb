// Package io reads and writes the files flowdot consumes: workflow
// definitions, cross-workflow dependency maps and run-state snapshots.
//
// # Formats
//
// Every file kind can be written as JSON, YAML or TOML. The format is chosen
// from the file extension by [FormatFromPath]:
//
//	.json        -> JSON
//	.yaml, .yml  -> YAML
//	.toml        -> TOML
//
// # Workflow Files
//
// A workflow file has an id, a list of nodes and a list of edges. A node with
// a "children" list (or kind "group") is a group; anything else is a task:
//
//	id: etl
//	nodes:
//	  - id: start
//	  - id: section_1
//	    tooltip: Tasks for section_1
//	    children:
//	      - id: task_1
//	      - id: task_2
//	  - id: end
//	    color: "#e8f7e4"
//	edges:
//	  - {from: start, to: section_1}
//	  - {from: section_1.task_1, to: section_1.task_2}
//	  - {from: section_1, to: end, label: done}
//
// Edge endpoints are qualified IDs: a group's children are addressed as
// "<group>.<child>". Structural checks (unknown endpoints, cyclic nesting)
// are left to the renderer; this package only rejects malformed files.
//
// # Dependency Files
//
// A dependency file maps the declaring workflow to its records:
//
//	{"dag_one": [{"source": "dag_one", "target": "dag_two",
//	              "kind": "sensor", "id": "wait_for_one", "label": "wait"}]}
//
// # State Files
//
// A state file maps qualified task IDs to run statuses:
//
//	{"section_1.task_1": "success", "end": "running"}
//
// Status names are case-insensitive and accept the usual aliases
// ("succeeded", "error"). Unknown names are kept as-is; the renderer styles
// them like a task with no run state.
package io
