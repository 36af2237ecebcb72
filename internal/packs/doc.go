// SPDX-License-Identifier: MPL-2.0

// Package packs defines the pack model: enable/disable units of safe and
// destructive patterns, the registry that orders them deterministically,
// and the keyword index used for quick rejection.
//
// Packs are organized in a two-level hierarchy: a category ("database",
// "kubernetes") and a sub-pack ("database.postgresql"). Enabling a
// category enables every sub-pack under it. Built-in namespaces are
// reserved; external packs loaded from YAML can never shadow them.
//
// No regex is compiled while the registry is built. Each pattern carries
// a lazily compiled handle that compiles on first evaluation and is
// cached for the process lifetime.
package packs
