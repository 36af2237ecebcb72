// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing errors.
//
// Every error carries a stable DCG-XXXX code, a category, the operation
// that failed, and optional resource context plus fix suggestions.
// Codes are grouped by category:
//
//   - DCG-1xxx: pattern evaluation
//   - DCG-2xxx: configuration
//   - DCG-3xxx: runtime
//   - DCG-4xxx: external integration
package issue
