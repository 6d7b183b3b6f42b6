// Package ir defines the intermediate representation consumed by the msl
// package.
//
// The IR models the shape a SPIR-V module takes once parsed and validated:
// a flat, numerically-indexed pool of entities keyed by an integer ID, plus
// a parallel ID-to-Meta table carrying decoration information. Producing
// this IR from a SPIR-V binary is the job of an external parser and is out
// of scope for this module; ir only defines the shape and the invariants a
// well-formed module must satisfy.
//
// # Structure
//
//   - Pool: a slice of Entity, indexed by ID. Each Entity is a tagged
//     variant of Type, Variable, Constant, Function, Block, Expression,
//     Undef, or ExtInstSet.
//   - Meta: a map from ID to *MetaRecord carrying decorations (location,
//     offset, binding, descriptor set, built-in kind, alias names) and,
//     for struct types, one MemberDecoration per member.
//   - Module: owns the Pool and Meta together with the entry point and
//     execution mode bits.
//
// # Design rationale
//
// Access to any IR object goes through an ID: there are no direct
// pointers between entities, so the IR can represent cyclic references
// (a struct containing a pointer to itself, or a Meta entry that refers
// back into the Pool) without caring about ownership. Every access site
// that needs to know what an ID refers to does so by switching on
// Entity.Kind rather than by dispatching through an interface — this
// mirrors how the pool itself stores the value (a discriminated union,
// not a set of virtual types).
package ir
