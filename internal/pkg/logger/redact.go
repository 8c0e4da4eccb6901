package logger

import "strings"

// RedactEmail masks the local part of an address while keeping the domain.
// Log lines here exist mostly for delivery triage, and the domain is what
// matters for that (provider rejections, typo domains); the mailbox itself
// is the PII. One leading character is kept so adjacent jobs for different
// recipients stay distinguishable:
//
//	ada.lovelace@example.com -> a***@example.com
//
// Anything without a usable local@domain shape is masked wholesale.
func RedactEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 1 || at == len(addr)-1 {
		return "***"
	}
	local, domain := addr[:at], addr[at+1:]
	if len(local) < 3 {
		// Too short to keep anything without giving most of it away.
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}
