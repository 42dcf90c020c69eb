// Package workflow defines the read-only object model rendered by flowdot.
//
// A [Workflow] is a named, ordered collection of [Node] values plus the
// dependency [Edge] list declared between them. Each node is a tagged variant:
// either a leaf [Task] or a [Group] that owns further nodes, so group nesting
// forms a tree of arbitrary depth.
//
// # Identifiers
//
// Tasks and groups carry a local ID. Their qualified ID is the dot-joined path
// of enclosing group IDs followed by the local ID:
//
//	section_2                     (group at the root)
//	section_2.inner_section_2     (nested group)
//	section_2.inner_section_2.t4  (task inside the nested group)
//
// Edges always reference qualified IDs. [Workflow.Walk] visits every node with
// its qualified ID.
//
// # Run State
//
// [RunStatus] enumerates the observed execution states used for colouring.
// The zero value [StatusNone] means no run context was supplied for a task.
//
// # Cross-Workflow Dependencies
//
// [Dependency] records one workflow depending on another through a named
// coupling instance such as a sensor or a trigger.
//
// The package performs no I/O. Decoders for files live in package io and
// run-state sources in package runstate.
package workflow
