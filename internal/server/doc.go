// Package server exposes the engine over a small JSON HTTP API built on gin.
//
// Every route maps to one Engine call. When a worker is configured, the task
// mutation routes accept ?async=true and enqueue the call instead of running
// it, answering 202 Accepted.
package server
