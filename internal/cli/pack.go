package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/assignpack/pkg/config"
	"github.com/matzehuels/assignpack/pkg/errors"
	"github.com/matzehuels/assignpack/pkg/pipeline"
	"github.com/matzehuels/assignpack/pkg/submission"
)

// packPlan is a validated pack request with flags and config merged.
type packPlan struct {
	assignment string
	number     uint32
	name       string
	studentID  string
	cwd        string
	cFile      string
	outDir     string
	autoDoc    bool
	manualDoc  string

	runCommand string
	display    string
	theme      string
	watermark  bool
}

// planPack merges flags over the saved config and validates the result.
// Nothing is written to disk.
func planPack(opts *packOpts, cfg *config.Config, cwd string) (*packPlan, error) {
	if opts.autoDoc && opts.docFile != "" {
		return nil, invalid("--doc-file and --auto-doc are mutually exclusive")
	}
	if opts.assignment == "" {
		return nil, invalid("missing --assignment (-a)")
	}
	assignment, num, err := submission.ParseAssignment(opts.assignment)
	if err != nil {
		return nil, err
	}

	rawName := firstNonEmpty(opts.name, cfg.Name)
	if rawName == "" {
		return nil, invalid("missing --name (or set in config)")
	}
	name, err := submission.CleanName(rawName, "name")
	if err != nil {
		return nil, err
	}
	rawID := firstNonEmpty(opts.studentID, cfg.StudentID)
	if rawID == "" {
		return nil, invalid("missing --id (or set in config)")
	}
	studentID, err := submission.CleanName(rawID, "student ID")
	if err != nil {
		return nil, err
	}

	cFile, err := submission.ResolveSource(opts.cFile, cwd)
	if err != nil {
		return nil, err
	}
	if err := submission.CheckExtension(cFile, []string{"c"}, "C source"); err != nil {
		return nil, err
	}

	autoDoc := opts.autoDoc || (opts.docFile == "" && cfg.AutoDocEnabled())
	if !autoDoc {
		switch {
		case opts.runCommandSet:
			return nil, invalid("--run-command requires --auto-doc")
		case opts.displayTemplateSet:
			return nil, invalid("--run-display-template requires --auto-doc")
		case opts.themeSet:
			return nil, invalid("--theme requires --auto-doc")
		}
	}

	outDir := firstNonEmpty(opts.outputDir, cfg.OutputDir)
	if outDir == "" {
		outDir = "."
	}
	if info, err := os.Stat(outDir); err != nil || !info.IsDir() {
		return nil, invalid("output directory not found: '%s'", outDir)
	}

	p := &packPlan{
		assignment: assignment,
		number:     num,
		name:       name,
		studentID:  studentID,
		cwd:        cwd,
		cFile:      cFile,
		outDir:     outDir,
		autoDoc:    autoDoc,
		watermark:  !opts.noWatermark && cfg.WatermarkEnabled(),
	}

	if !autoDoc {
		doc, err := submission.ResolveDoc(opts.docFile, cwd, p.docName())
		if err != nil {
			return nil, err
		}
		if err := submission.CheckExtension(doc, []string{"doc"}, "Word document"); err != nil {
			return nil, err
		}
		p.manualDoc = doc
		return p, nil
	}

	p.runCommand = firstNonEmpty(opts.runCommand, cfg.RunCommand)
	p.theme = firstNonEmpty(opts.theme, cfg.Theme)

	tpl := cfg.RunDisplayTemplate
	if opts.displayTemplateSet {
		tpl = &opts.displayTemplate
	}
	p.display, err = submission.RenderDisplayCommand(tpl, submission.DisplayVars{
		Assignment: assignment,
		Number:     num,
		Name:       name,
		StudentID:  studentID,
		SourcePath: cFile,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *packPlan) docName() string {
	return submission.DocName(p.assignment, p.name, p.studentID)
}

func (p *packPlan) folder() string {
	return filepath.Join(p.outDir, submission.FolderName(p.assignment, p.name, p.studentID))
}

func (p *packPlan) zipPath() string {
	return p.folder() + ".zip"
}

// runPack executes the root command.
func (c *CLI) runPack(ctx context.Context, opts *packOpts) error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return errors.IO(err, "current directory")
	}

	plan, err := planPack(opts, cfg, cwd)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)

	printHeader("Packing %s for %s (%s)", plan.assignment, plan.name, plan.studentID)

	subDir := plan.folder()
	zipPath := plan.zipPath()
	if err := submission.PrepareOutput(subDir, zipPath, opts.force); err != nil {
		return err
	}
	if err := os.MkdirAll(subDir, 0755); err != nil {
		return errors.IO(err, "creating %s", subDir)
	}

	printInfo("Copying files...")
	cName, err := submission.FileName(plan.cFile)
	if err != nil {
		return err
	}
	if err := submission.CopyNonBinaryFiles(cwd, subDir); err != nil {
		return err
	}
	if !submission.SameDir(plan.cFile, cwd) {
		if err := submission.CopyFile(plan.cFile, filepath.Join(subDir, cName)); err != nil {
			return err
		}
	}

	docDest := filepath.Join(subDir, plan.docName())
	if plan.autoDoc {
		if err := c.generateDoc(ctx, plan, opts, cName, docDest); err != nil {
			return err
		}
	} else {
		if submission.PathsEqual(plan.manualDoc, docDest) {
			return invalid("doc source and destination resolve to the same file")
		}
		if err := submission.CopyFile(plan.manualDoc, docDest); err != nil {
			return err
		}
	}

	printInfo("Zipping...")
	if err := submission.CreateZip(subDir, zipPath); err != nil {
		return err
	}

	printSuccess("Packed %s", plan.assignment)
	generated := ""
	if plan.autoDoc {
		generated = docDest
	}
	printSubmission(subDir, zipPath, generated)
	prog.done("Packed " + plan.assignment)
	return nil
}

// generateDoc runs the pipeline and writes the document to dest.
func (c *CLI) generateDoc(ctx context.Context, plan *packPlan, opts *packOpts, cName, dest string) error {
	code, err := submission.ReadTextLossy(plan.cFile)
	if err != nil {
		return err
	}

	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, stageMessage(pipeline.StageCapture, plan.display))
	runner.Progress = spinner.Stage(plan.display)
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Options{
		Assignment: plan.assignment,
		Name:       plan.name,
		StudentID:  plan.studentID,
		SourcePath: plan.cFile,
		SourceName: cName,
		Code:       code,
		RunCommand: plan.runCommand,
		Display:    plan.display,
		Theme:      plan.theme,
		Watermark:  plan.watermark,
		Refresh:    opts.refresh,
	})
	if err != nil {
		spinner.StopWithError("Document generation failed")
		return err
	}
	spinner.StopWithSuccess("Generated " + filepath.Base(dest))
	printStats(res.Stats.CaptureTime, res.Stats.RenderTime, res.Stats.AssembleTime, res.CacheInfo.ScreenshotHit)

	if err := os.WriteFile(dest, res.Document, 0644); err != nil {
		return errors.IO(err, "writing %s", dest)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}

func firstNonEmpty(flag string, fallback *string) string {
	if flag != "" {
		return flag
	}
	if fallback != nil {
		return *fallback
	}
	return ""
}
