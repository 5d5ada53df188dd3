// Package common contains shared constants and sentinel errors used across
// dreamsync components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AppIdentifier is appended to a profile's apps-used list on session start.
const AppIdentifier = "WilliDreams"

// ContactsBatchSize is the largest number of phone numbers sent in one
// contacts lookup.
const ContactsBatchSize = 30
