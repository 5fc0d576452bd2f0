// Package observability records task activity as JSON Lines in
// .tasks/events.jsonl and derives activity metrics from it. The log is
// telemetry only; task state always comes from the record files.
package observability
