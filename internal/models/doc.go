// Package models defines the core domain models for the ledger.
//
// # Models
//
//   - User: a registered account; owns a set of friends and carries three
//     derived aggregate balance fields
//   - Friend: a counterparty relationship owned by exactly one user, with a
//     cached signed balance
//   - Transaction: an immutable money event (expense split or settlement)
//     between a user and one friend
//
// # Design Principles
//
//  1. **Derived fields are caches**: Friend.Balance and the User aggregate
//     fields are recomputed by the ledger package on every mutation, never
//     hand-edited.
//  2. **Soft delete**: transactions carry an IsActive flag; an inactive
//     transaction is excluded from every balance computation but preserved
//     as history. Physical removal only happens when a friend is deleted.
//  3. **No circular references**: relationships use ID strings, not pointers.
//  4. **Validation at the boundary**: Transaction.Validate rejects invalid
//     records before they ever reach storage or the ledger.
package models
