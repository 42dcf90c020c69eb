// Package dot renders workflow dependency graphs as Graphviz DOT text.
//
// # Pipeline
//
// Rendering runs in three stages that never feed back into each other:
//
//	workflow.Workflow → Build → Graph → Encode → DOT text
//
// [Build] walks the task tree and the declared edges. Leaf tasks become
// nodes styled by [Palette.Resolve]; groups become clusters. Whenever an
// edge crosses a group boundary it is routed through one of two synthesized
// join nodes, so each group presents a single entry and exit:
//
//	<group-path>.upstream_join_id    entry, drawn when the group has upstream dependencies
//	<group-path>.downstream_join_id  exit, drawn when the group has downstream dependencies
//
// Inside the group, the entry join feeds every child without an internal
// predecessor and every child without an internal successor feeds the exit
// join. Group boundaries are resolved innermost first.
//
// [BuildDependencies] is the sibling builder for cross-workflow graphs: each
// dependency record becomes source -> coupling instance -> target, with no
// clustering.
//
// # Determinism
//
// Serialization never depends on map iteration order. Attributes are sorted
// by key, siblings by explicit rank and ID, and edges are emitted last sorted
// by source then target. Rendering the same workflow and run state twice
// yields byte-identical text.
//
// IDs that are not plain identifiers or numerals are quoted, so
// "section_1.task_1" is quoted while start is not.
//
// # Usage
//
//	src, err := dot.Render(wf, dot.Options{States: states})
//	if errors.Is(err, dot.ErrUnknownEndpoint) {
//	    // an edge names a task that does not exist
//	}
//
// [Compile] hands the text to Graphviz for consumers that need a parsed graph.
//
// All functions are safe for concurrent use on distinct inputs; nothing is
// retained between calls.
package dot
