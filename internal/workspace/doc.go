// Package workspace manages scratch directories, supporting both ephemeral
// (timestamped) and persistent (fixed-path) modes.
//
// Ephemeral mode creates a timestamped staging directory (e.g.
// .fbox-20261018-122336) that is either promoted into its final location with
// a single rename or removed completely.
//
// Persistent mode uses a fixed directory path (e.g. <project>/tmp) that is
// kept across runs, such as the directory database dumps are written to.
package workspace
