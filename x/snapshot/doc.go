/*
Package snapshot computes the dividends owed for a single day from the
percentage history, the fee ledger and historical stake balances.

Stake balances are provided by oracles. They must answer for any past day
and the answer must never change, otherwise the computed allocation is
wrong.
*/
package snapshot
