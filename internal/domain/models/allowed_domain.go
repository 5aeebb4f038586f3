package models

// AllowedDomain is one entry of the email-domain allowlist.
// Domain is stored lowercase and matched exactly against the part of the
// submitted email after '@'.
type AllowedDomain struct {
	Domain string `json:"domain"`
}
