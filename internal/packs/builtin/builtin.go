// SPDX-License-Identifier: MPL-2.0

// Package builtin holds the built-in pack definitions.
//
// Each file contributes one or more pack constructors; RegisterAll wires them
// into a registry in a fixed order. Pattern data only — nothing here
// compiles a regex.
package builtin

import "dcg-cli/internal/packs"

// constructors, in registration order.
var constructors = []func() *packs.Pack{
	gitPack,
	filesystemPack,
	strictGitPack,
	packageManagersPack,
	postgresqlPack,
	mysqlPack,
	redisPack,
	mongodbPack,
	dockerPack,
	kubectlPack,
	awsPack,
	terraformPack,
	diskPack,
}

// RegisterAll registers every built-in pack.
func RegisterAll(r *packs.Registry) error {
	for _, ctor := range constructors {
		if err := r.Register(ctor()); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry builds a registry preloaded with the built-in packs.
func NewRegistry() *packs.Registry {
	r := packs.NewRegistry()
	// Built-in packs have unique ids by construction.
	if err := RegisterAll(r); err != nil {
		panic(err)
	}
	return r
}
