package utils

import "time"

// AuthCachePrefix is the prefix used for Redis session token keys.
const AuthCachePrefix = "auth:token:"

// ResetCodePrefix keys pending password reset codes by email.
const ResetCodePrefix = "auth:reset:"

// ResetCodeTTL is how long a reset code stays valid.
const ResetCodeTTL = 15 * time.Minute

// ResetAttemptsSuffix keys the failed attempt counter next to a reset code.
const ResetAttemptsSuffix = ":attempts"

// MaxResetAttempts is how many wrong codes burn a pending reset code.
const MaxResetAttempts = 5

// SessionCookieName is the cookie carrying the sign in token.
const SessionCookieName = "session"
