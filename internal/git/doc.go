// Package git wraps the go-git operations fbox needs: reading the user's git
// identity, initializing a freshly generated project as a repository with an
// initial commit, matching gitignore-style patterns and listing tracked files.
package git
