// Package middleware provides the HTTP middleware chain: request ids,
// structured request logging, panic recovery, CORS, gzip, and the two
// authentication gates.
//
// Authentication is cookie-based and comes in two substrates. The
// token gate (RequireToken, SoftToken) verifies the stateless signed
// token riding the "jwt" cookie. The session gate (RequireSession)
// resolves the opaque "sid" cookie against the server-side session
// store. Routes choose whichever substrate fits; both resolve to the
// same context user.
//
// Rejections distinguish a missing credential (generic unauthorized)
// from one that was presented but no longer verifies (session
// expired), and failed cookies are cleared so clients stop resending
// them.
package middleware
