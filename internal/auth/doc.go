// Package auth verifies HS256 bearer tokens and gates API handlers by
// scope. Read scope covers state queries and telemetry, control scope
// covers operations that change the rig. The health endpoint is always
// exempt.
package auth
