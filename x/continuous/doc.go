/*
Package continuous implements the running reward index used once the
continuous accrual mode is enabled.

For every token the accumulator keeps a weight: the revenue received so far
per unit of staked supply, scaled by fixed.One. Every deposit is weighted by
the time elapsed since the previous deposit of the same token, counted in
periods (one day by default):

	weight += amount * elapsed * fixed.One / (supply * period)

An account remembers the weight at its last checkpoint, so what it earned
since then is

	(weight - checkpoint) * balance / fixed.One

where balance is the stake the account held since that checkpoint. An
account must be settled right before its stake changes.

Until the mode is enabled every operation is a no-op. Enabling is one way.
*/
package continuous
