/*
Package claims records which days were already settled for an account and
validates the day range of a claim request.

Settled days are kept in a sparse bitmap. Every account owns 256 bit words
indexed by day/256, created on first use. A bit is never cleared, which is
the only protection against paying the same day twice.
*/
package claims
