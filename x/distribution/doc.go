/*
Package distribution settles the dividends owed to stake holders and the
treasury.

A claim covers a range of past days. For every day in the range that was
not settled yet, the owed amounts are computed from the percentage history
and the fees received on that day, the day is marked as claimed and the
amounts are summed per token. Finally a single transfer per token pays the
total. If any transfer fails, nothing of the claim is persisted and the
claim can be retried.

Once the continuous mode is enabled, holder dividends of days starting with
the activation day are no longer computed from daily snapshots. Instead,
every received revenue feeds a running index and a claim withdraws what the
account accumulated.
*/
package distribution
