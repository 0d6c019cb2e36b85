// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package repository implements the durable storage for Fantasma
on top of a single embedded BadgerDB instance: clients,
authorization codes, refresh tokens, proofs, nullifiers, issuers, and the
append-only audit log all share one database, key-prefixed per entity,
following a key-prefix-plus-iterator idiom common to embedded
session/key-value storage.

Every mutating operation that must be atomic (redeem_once, insert_unique)
is implemented as a single BadgerDB transaction so that concurrent
callers observe serializable semantics without an external lock.
*/
package repository
