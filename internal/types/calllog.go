package types

import "time"

// CallRequest is the semantic key-value payload of one inbound exchange.
type CallRequest map[string]any

// CallResponse is the structured outcome recorded alongside a request.
type CallResponse struct {
	Status string         `json:"status"`
	Body   map[string]any `json:"body"`
}

// CallLogEntry is one immutable audit record of a webhook request and its
// outcome. Seq is monotonic per strategy and assigned at append time; it is
// the authoritative ordering, not the timestamp (timestamps may tie under
// high load).
type CallLogEntry struct {
	Seq       int64        `json:"seq"`
	Timestamp time.Time    `json:"timestamp"`
	Request   CallRequest  `json:"request"`
	Response  CallResponse `json:"response"`
}
