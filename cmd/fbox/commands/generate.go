package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/fbox/internal/config"
	ferrors "git.home.luguber.info/inful/fbox/internal/errors"
	"git.home.luguber.info/inful/fbox/internal/git"
	"git.home.luguber.info/inful/fbox/internal/logfields"
	"git.home.luguber.info/inful/fbox/internal/scaffold"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Domain      string `arg:"" help:"Production domain of the project, e.g. www.example.com"`
	NiceName    string `arg:"" name:"nice-name" help:"Human readable project name"`
	ProjectName string `short:"p" name:"project-name" help:"Python package of the Django project (default: BOX_PROJECT_NAME or box)"`
	Server      string `short:"s" help:"Deployment server as user@host (default: SERVER)"`
	Destination string `short:"d" help:"Directory the project is created in (default: BOX_DESTINATION or the working directory)" type:"path"`
	Template    string `help:"Template directory (default: BOX_TEMPLATE or the bundled template)" type:"path"`
	IgnoreFile  string `name:"ignore-file" help:"gitignore-style file listing template paths to skip (default: .gitignore next to the template)" type:"path"`
	Charge      bool   `help:"Do not wait for confirmation before generating"`
}

func (g *GenerateCmd) Run(global *Global, _ *CLI) (err error) {
	start := time.Now()
	defer func() { global.observe("generate", start, err) }()

	defaults, err := config.LoadGeneratorDefaults(global.Home)
	if err != nil {
		return ferrors.Wrap(err, ferrors.CategoryConfig, ferrors.SeverityFatal, "failed to load generator defaults")
	}
	if defaults.Loaded == "" {
		global.Console.Warn("No ~/%s found, using built-in defaults.", config.BoxEnvFile)
		global.Console.Info("Put SERVER=user@host (and optionally BOX_DESTINATION, BOX_TEMPLATE) there to change them.")
	}

	opts := g.Options(defaults, global.Workdir)
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx := scaffold.NewContext(opts, git.LookupIdentity(opts.Destination))
	for _, row := range ctx.Rows() {
		global.Console.Step("%s", row)
	}
	global.Console.Step("Destination: %s", scaffold.ProjectDir(opts.Destination, ctx))

	if !opts.Charge {
		if err := global.Console.WaitForEnter(global.Ctx, "Press Enter to generate the project, Ctrl-C to abort. "); err != nil {
			return err
		}
	}

	res, err := scaffold.Generate(opts, ctx)
	if err != nil {
		return err
	}
	global.Logger.Info("Project generated", logfields.Path(res.ProjectDir), slog.String("commit", res.Commit))

	global.Console.Success("Generated %s", res)
	global.Console.Info("Next: cd %s && fbox local setup", res.ProjectDir)
	return nil
}

// Options resolves flags against the generator defaults.
func (g *GenerateCmd) Options(defaults *config.GeneratorDefaults, workdir string) scaffold.Options {
	opts := scaffold.Options{
		Domain:      g.Domain,
		NiceName:    g.NiceName,
		ProjectName: firstNonEmpty(g.ProjectName, defaults.ProjectName, scaffold.DefaultProjectName),
		Server:      firstNonEmpty(g.Server, defaults.Server),
		Destination: firstNonEmpty(g.Destination, defaults.Destination, workdir),
		TemplateDir: firstNonEmpty(g.Template, defaults.Template, defaultTemplateDir(workdir)),
		Charge:      g.Charge,
	}
	opts.IgnoreFile = firstNonEmpty(g.IgnoreFile, scaffold.DefaultIgnoreFile(opts.TemplateDir))
	return opts
}

// defaultTemplateDir returns the bundled template, looked up next to the
// executable first and in the working directory second.
func defaultTemplateDir(workdir string) string {
	rel := filepath.Join("template", "project")
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), rel)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(workdir, rel)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
