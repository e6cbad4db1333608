// Package telemetry distributes rig state changes to HTTP clients over
// Server-Sent Events. A bounded replay buffer lets reconnecting clients
// resume from their Last-Event-ID, and a heartbeat keeps idle streams
// alive while anyone is subscribed.
package telemetry
