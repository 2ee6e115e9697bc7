// File: utils/constants.go
package utils

// SessionCachePrefix is the prefix used for Redis session context keys.
const SessionCachePrefix = "chat:session:"
