// Package jobs contains background workers that run alongside the HTTP
// server. Each job owns a ticker loop with Start/Stop lifecycle
// management and runs its work under a bounded context.
package jobs
