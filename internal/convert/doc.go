// Package convert runs the external texture conversion tool (imaketx by
// default) for one ConversionJob at a time.
//
// The command line is a template such as "imaketx {src} {dst}", split with
// shell quoting rules once ([ParseTemplate]) and expanded per job
// ([Template.Build]). [Executor] runs it, captures output, and turns a
// failure into an [*Error] whose Kind is classified from the exit status
// and captured stderr.
package convert
