// Package msl cross-compiles a parsed SPIR-V module (see package ir) into
// Metal Shading Language source text.
//
// The input is a vertex, fragment, or compute stage SPIR-V module already
// parsed and validated by an external front-end into the ir package's
// representation. Producing that IR from a SPIR-V binary, and the generic
// GLSL-family opcode-traversal scaffolding this package specializes (see
// package glslbase), are both out of scope here — this package is the
// MSL-specific transformation and emission layer described in spec.md.
//
// # Usage
//
//	mod := /* IR produced by an external SPIR-V parser */
//	options := msl.DefaultOptions()
//	src, info, err := msl.Compile(mod, options, nil, nil)
//	if err != nil {
//	    var diag *msl.Diagnostic
//	    if errors.As(err, &diag) {
//	        // diag.Kind, diag.Message
//	    }
//	    return err
//	}
//
// # Pipeline
//
// Compile runs, in order: identifier sanitization, active-builtin
// computation, the opcode pre-scanner, interface-block synthesis, global
// variable localization, struct-packing analysis, specialization-constant
// resolution, and finally the emission loop (header, specialization
// constants, resources, custom helper functions, entry function). The
// emission loop runs at most three passes, re-emitting when a late
// discovery (e.g. an image read through a type printed write-only)
// requires it.
package msl
