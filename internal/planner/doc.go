// Package planner decides which texture files need conversion and builds a
// ConversionJob for each one, which the scheduler package consumes.
//
// One job is created per source file: every tile of a UDIM sequence
// converts on its own. Targets live beside their source with the configured
// extension. Files already in the target format are never planned.
package planner
