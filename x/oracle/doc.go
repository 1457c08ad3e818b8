/*
Package oracle provides in-memory implementations of the stake, liquidity
pool and time oracles the distribution consults.

Balances are kept as checkpoint histories: a lookup returns the value set
on the greatest day that is not after the requested day. Oracles can be
loaded from a JSON document, which is how the command line tools feed
historical balances into the application.
*/
package oracle
