// Package auth implements the single-principal allowlist check: any
// user id other than the configured one is treated as if it did not
// exist, per the "Unauthorized is silent at the transport" policy.
package auth

type Allowlist struct {
	authorizedUserID int64
}

func New(authorizedUserID int64) Allowlist {
	return Allowlist{authorizedUserID: authorizedUserID}
}

// IsAuthorized reports whether userID is the sole allowlisted principal.
func (a Allowlist) IsAuthorized(userID int64) bool {
	return userID == a.authorizedUserID
}
