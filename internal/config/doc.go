// Package config manages application configuration for the custom-maps API.
//
// Configuration is loaded from environment variables with development
// defaults, then checked with Validate before the server starts. All
// settings live here so there is a single source of truth.
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS, frontend URL)
//   - DatabaseConfig: SurrealDB connection settings
//   - AuthConfig: token signing secret and lifetimes
//   - SessionConfig: server-side session TTL and touch interval
//   - OAuthConfig: Google sign-in credentials
//   - StorageConfig: S3 bucket and CDN base URL
//   - UploadConfig: image upload limits
//
// # Key Environment Variables
//
//	SERVER_PORT            - HTTP server port (default: 8080)
//	DB_HOST / DB_PORT      - SurrealDB endpoint
//	JWT_SECRET_KEY         - token signing secret (required)
//	GOOGLE_CLIENT_ID       - Google OAuth client (required)
//	BUCKET_NAME            - S3 bucket for map images (required)
//	CLOUDFRONT_DOMAIN      - public base URL for stored images (required)
//	FRONTEND_URL           - origin the auth flow redirects back to
package config
