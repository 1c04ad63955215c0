package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// TimestampLayout is the layout of login/logout timestamps. It is fixed width,
// so timestamps compare lexically, and keeps microseconds so that two logins in
// the same second stay distinct.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// DefaultUserName is the placeholder used when no source provides a name.
const DefaultUserName = "User"
