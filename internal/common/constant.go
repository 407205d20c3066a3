package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// access token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "
