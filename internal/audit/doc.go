// Package audit writes an append-only JSONL log of rig operations. Each
// dispatched command produces one line with the rig handle, action name,
// outcome and latency. Files rotate by size.
package audit
