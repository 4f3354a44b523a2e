// Package output provides destinations for rendered documents and
// persisted files.
//
//   - Writers (writer.go): the [Writer] interface with [StdoutWriter] and
//     an atomic [FileWriter] (temp file + rename in the target directory).
//
//   - Pages (page.go): wrap a rendered HTML fragment into a standalone
//     HTML document.
package output
