package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/swot"
)

type SWOTCmd struct {
	Show     SWOTShowCmd     `cmd:"" default:"1" help:"Show your SWOT analysis"`
	Save     SWOTSaveCmd     `cmd:"" help:"Save a SWOT analysis from a YAML or JSON file"`
	Template SWOTTemplateCmd `cmd:"" help:"Print an empty SWOT analysis to fill in"`
}

type SWOTShowCmd struct{}

func (c *SWOTShowCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	return showSWOT(ctx, app)
}

func showSWOT(ctx context.Context, app *App) error {
	s, err := authorize(app, route.PathSWOT, route.Requirements{})
	if err != nil {
		return err
	}

	doc, found, err := app.Client.GetSWOT(ctx, s.Token)
	if err != nil {
		return fmt.Errorf("failed to load SWOT analysis: %w", err)
	}
	if !found {
		fmt.Fprintln(app.Out, "No SWOT analysis saved yet.")
		fmt.Fprintln(app.Out)
		printNext(app.Out, route.PathSWOT)
		return nil
	}

	return renderSWOT(app.Out, doc)
}

type SWOTSaveCmd struct {
	File string `arg:"" help:"SWOT analysis file (.yaml, .yml or .json)" type:"existingfile"`
}

func (c *SWOTSaveCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	s, err := authorize(app, route.PathSWOT, route.Requirements{})
	if err != nil {
		return err
	}

	doc, err := readSWOT(c.File)
	if err != nil {
		return err
	}

	if err := app.Client.PutSWOT(ctx, s.Token, doc); err != nil {
		return fmt.Errorf("failed to save SWOT analysis: %w", err)
	}

	// the backend now reports swot_complete
	if err := app.Gateway.RefreshIdentity(ctx); err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "SWOT analysis saved (%d entries).\n", doc.Count())

	tr, err := route.Navigate(route.PathDashboard, app.Session())
	if err != nil {
		return err
	}
	printNext(app.Out, tr.Path)
	return nil
}

func readSWOT(path string) (swot.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return swot.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc swot.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = swot.ParseYAML(data)
	default:
		doc, err = swot.Parse(data)
	}
	if err != nil {
		return swot.Document{}, fmt.Errorf("%s: %w", path, err)
	}

	if err := doc.Validate(); err != nil {
		return swot.Document{}, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

type SWOTTemplateCmd struct{}

func (c *SWOTTemplateCmd) Run(ctx context.Context, globals *Globals) error {
	enc := yaml.NewEncoder(globals.out())
	enc.SetIndent(2)
	if err := enc.Encode(swot.Default()); err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	return enc.Close()
}
