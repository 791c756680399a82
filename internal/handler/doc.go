// Package handler implements the HTTP endpoints of the custom-maps
// API. Handlers decode and validate input, call one service method,
// and translate service errors through MapServiceError so every route
// speaks the same error contract.
//
// Routes under /api/public are readable without credentials (some
// annotate responses for a signed-in viewer when one is present);
// routes under /api sit behind the token or session middleware.
package handler
