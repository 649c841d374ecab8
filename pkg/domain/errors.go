package domain

import "errors"

// ErrNodeNotFound is returned when an operation names a node id absent from the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrEdgeNotFound is returned when a repair targets a connection that does not exist.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrCycleDetected is returned by traversals configured to fail on cycles.
var ErrCycleDetected = errors.New("cycle detected")

// ErrUnusableResolution is returned when an advisor reply cannot be applied.
var ErrUnusableResolution = errors.New("unusable resolution")

// ErrNoAdvisor is returned when a conflict needs an advisor and none is configured.
var ErrNoAdvisor = errors.New("no repair advisor configured")

// ErrReportNotFound is returned when a report ID cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrEmptyGraph is returned when a document contains no nodes.
var ErrEmptyGraph = errors.New("graph has no nodes")
