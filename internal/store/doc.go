// Package store holds the per-entity observation series in memory and hands
// them out strictly by entity identity.
//
// The store exists to make cross-entity leakage structurally impossible:
// series are partitioned by key at construction time, before any train/test
// windowing happens, and lookups return defensive copies. No caller can
// reach another entity's observations through a shared subset, and nothing
// mutates a series after the store is built.
package store
