/*
Package orm provides an easy to use db wrapper

Models are stored in buckets. A bucket owns a key prefix and serializes the
models it holds with their own Marshal and Unmarshal methods. Sequences keep
monotonic counters, used to maintain append-only vectors of models.
*/
package orm
