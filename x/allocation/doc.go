/*
Package allocation keeps the history of how incoming revenue is split
between named recipient categories.

Every category holds an append-only vector of (day, percentage) snapshots
ordered by day. A change made on a day that already has a snapshot amends
that snapshot instead of appending a new one. The percentage active on any
past day is found with a binary search over the vector.
*/
package allocation
