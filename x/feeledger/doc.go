/*
Package feeledger accumulates the revenue received per day and token, keeps
the list of accepted tokens and maintains the day counter.

The day counter is not driven by a timer. Every state changing entry point
calls Clock.Rollover with the current block time, which advances the stored
day when it is behind.
*/
package feeledger
