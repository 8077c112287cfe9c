// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research supervisor:
// the cached research record, web search results, and component configuration.
package types

import "strings"

// WebResult is one scholarly search hit as returned to clients.
type WebResult struct {
	Title   string `json:"title" yaml:"title"`
	Link    string `json:"link" yaml:"link"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Record is the outcome of one full pipeline run for a task. It is the only
// persisted entity: the cache holds at most one Record per Task.
//
// Text stages are held as ordered lines. The JSON field names are the
// report keys clients consume; YAML is used for exports.
type Record struct {
	// Task is the cache key, matched exactly.
	Task string `json:"Task" yaml:"task"`

	Hypotheses  []string    `json:"Generated Hypotheses" yaml:"hypotheses"`
	WebResearch []WebResult `json:"Web Research" yaml:"web_research"`
	Analysis    []string    `json:"Analysis" yaml:"analysis"`
	Reasoning   []string    `json:"Reasoning" yaml:"reasoning"`
	Evaluation  []string    `json:"Evaluation" yaml:"evaluation"`
	Summary     []string    `json:"Summary" yaml:"summary"`
	Conclusion  []string    `json:"Conclusion" yaml:"conclusion"`
}

// SplitLines breaks text at newline boundaries. An empty text yields a
// single empty line so that JoinLines(SplitLines(s)) == s for every s.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
