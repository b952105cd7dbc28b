// Package common contains shared constants and sentinel errors used across
// storefront components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// IssueDateLayout is the wire format of a product issue date.
const IssueDateLayout = "2006-01-02"
