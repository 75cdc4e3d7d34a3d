// Package secrets resolves externally managed secret material and gates node
// startup on it becoming real.
//
// Secret slots are created by the provisioning layer holding a well-known
// placeholder sentinel; an operator or automation later writes the real
// value. The Waiter polls each required reference on a fixed interval with a
// bounded attempt budget, and succeeds only when every value differs from the
// placeholder and passes its format predicate. Key-bearing secrets must carry
// an algorithm-name prefix (see the keyutil package).
//
// Secret values are read-only to this system and are returned to the caller
// only; they are never written to the logging channel.
package secrets
