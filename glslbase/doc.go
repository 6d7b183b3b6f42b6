// Package glslbase models the generic GLSL-family back-end that a
// dialect-specific emitter (the msl package, in this repository) delegates
// to when it has no dialect-specific override.
//
// The real-world shared GLSL-family back-end this stands in for supplies
// opcode traversal and expression-emission scaffolding to several
// concrete targets (GLSL itself, MSL, HLSL); per spec.md §1 it is an
// external collaborator referenced only through the interface it exposes.
// glslbase therefore defines that interface (Emitter) and a minimal
// default implementation (Base) rather than a full GLSL compiler: Base
// only covers the handful of generic behaviors named in spec.md §9 design
// note 2 that the msl package needs a fallback for.
package glslbase
