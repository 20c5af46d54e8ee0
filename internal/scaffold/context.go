// Package scaffold generates a new project from a template directory.
//
// A template is a plain directory tree. Placeholders of the form $NAME or
// ${NAME} inside file contents and path names are replaced with values from a
// Context; everything else is copied as is.
package scaffold

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/git"
)

// Context keys available to templates.
const (
	KeyDomain      = "DOMAIN"
	KeyDomainSlug  = "DOMAIN_SLUG"
	KeyNiceName    = "NICE_NAME"
	KeyProjectName = "PROJECT_NAME"
	KeyServer      = "SERVER"
	KeyServerName  = "SERVER_NAME"
	KeyUserName    = "USER_NAME"
	KeyUserEmail   = "USER_EMAIL"
)

// DefaultProjectName is the Python package name used when none is given.
const DefaultProjectName = "box"

// Context is the substitution mapping used for paths and file contents.
type Context map[string]string

// Options are the user inputs of a generator run.
type Options struct {
	Domain      string
	NiceName    string
	ProjectName string
	Server      string
	Destination string
	TemplateDir string
	IgnoreFile  string
	Charge      bool // generate without waiting for confirmation
}

var (
	nonWord          = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	pythonIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Slugify replaces every run of non-word characters with an underscore,
// e.g. "www.example.com" becomes "www_example_com".
func Slugify(domain string) string {
	return nonWord.ReplaceAllString(domain, "_")
}

// Validate checks the inputs the context is built from.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Domain) == "" {
		return ferrors.ValidationFailed("domain", "must not be empty")
	}
	if strings.ContainsAny(o.Domain, `/\`) {
		return ferrors.ValidationFailed("domain", "must not contain path separators")
	}
	if strings.TrimSpace(o.NiceName) == "" {
		return ferrors.ValidationFailed("nice_name", "must not be empty")
	}
	if !pythonIdentifier.MatchString(o.ProjectName) {
		return ferrors.ValidationFailed("project_name", fmt.Sprintf("%q is not a valid Python module name", o.ProjectName))
	}
	if o.TemplateDir == "" {
		return ferrors.ValidationFailed("template", "must not be empty")
	}
	return nil
}

// NewContext builds the substitution context for opts. Identity values are
// taken as given and may be empty.
func NewContext(opts Options, identity git.Identity) Context {
	server := opts.Server
	serverName := server
	if i := strings.LastIndex(server, "@"); i >= 0 {
		serverName = server[i+1:]
	}
	return Context{
		KeyDomain:      opts.Domain,
		KeyDomainSlug:  Slugify(opts.Domain),
		KeyNiceName:    strings.ReplaceAll(opts.NiceName, `'`, `\'`),
		KeyProjectName: opts.ProjectName,
		KeyServer:      server,
		KeyServerName:  serverName,
		KeyUserName:    identity.Name,
		KeyUserEmail:   identity.Email,
	}
}

// Identity returns the git author identity stored in the context.
func (c Context) Identity() git.Identity {
	return git.Identity{Name: c[KeyUserName], Email: c[KeyUserEmail]}
}

// Keys returns the context keys in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rows renders the context as sorted "KEY: value" lines.
func (c Context) Rows() []string {
	rows := make([]string, 0, len(c))
	for _, k := range c.Keys() {
		rows = append(rows, k+": "+c[k])
	}
	return rows
}
