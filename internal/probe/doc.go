// Package probe inspects texture files on disk: existence, size and
// modification time. It never opens or decodes image content.
//
// [Stat] returns a [FileInfo] for one path; [StatAll] probes a batch in
// input order. A missing file is not an error; it yields Exists == false.
package probe
