package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// SessionExpiredReason is returned whenever a request carries no usable
// identity: missing, malformed or expired tokens all read the same.
const SessionExpiredReason = "session expired, please log in again"
