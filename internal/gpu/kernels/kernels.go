// Package kernels embeds the OpenCL C kernel sources and concatenates them
// into the three program sources the device backend compiles, mirroring
// original_source/src/solver/passes.rs's `concat!(include_str!(...))`
// pattern for assembling WGSL fragments.
package kernels

import _ "embed"

//go:embed short256.cl
var short256Source string

//go:embed filter_stage.cl
var filterStageSource string

//go:embed reset_stage.cl
var resetStageSource string

//go:embed sha512.cl
var sha512Source string

//go:embed pbkdf2_hmac.cl
var pbkdf2HmacSource string

//go:embed derivation_stage.cl
var derivationStageSource string

// FilterProgramSource is short256.cl + filter_stage.cl, the full program
// source for the reset+filter pipeline's filter kernel.
func FilterProgramSource() string {
	return short256Source + "\n" + filterStageSource
}

// ResetProgramSource is reset_stage.cl alone.
func ResetProgramSource() string {
	return resetStageSource
}

// DerivationProgramSource is sha512.cl + pbkdf2_hmac.cl + derivation_stage.cl,
// the full program source for the derivation kernel.
func DerivationProgramSource() string {
	return sha512Source + "\n" + pbkdf2HmacSource + "\n" + derivationStageSource
}
