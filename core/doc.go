// Package core contains the canonical vault domain: the balance ledger, the
// reentrancy guard, and the guarded deposit/withdraw orchestration. Adapters
// (settlement rails, SQL stores, command/query surfaces) depend on this
// package; core must not depend on any of them.
package core
