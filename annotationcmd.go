// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"flag"
	"fmt"
	"io"
	"runtime"

	log "github.com/sirupsen/logrus"
)

// outputOptions are the flags shared by both subcommands.
type outputOptions struct {
	groups     groupList
	outputDir  string
	schemaFile string
	threads    int
	npy        bool
	xlsx       bool
	html       bool
}

func (o *outputOptions) register(flags *flag.FlagSet) {
	flags.Var(&o.groups, "group", "fine-mapped `label=file` (repeat for each group, in display order)")
	flags.StringVar(&o.outputDir, "output-dir", ".", "output `directory`")
	flags.StringVar(&o.schemaFile, "schema", "", "schema override `file` (yaml)")
	flags.IntVar(&o.threads, "threads", runtime.NumCPU(), "maximum number of input files to load at once")
	flags.BoolVar(&o.npy, "output-npy", false, "also write the table as a numpy array")
	flags.BoolVar(&o.xlsx, "output-xlsx", false, "also write an xlsx workbook")
	flags.BoolVar(&o.html, "output-html", false, "also write an interactive html chart")
}

// parseArgs parses args and returns the exit code to use if the
// command should stop now.
func (o *outputOptions) parseArgs(flags *flag.FlagSet, args []string, stderr io.Writer) (int, bool) {
	err := flags.Parse(args)
	if err == flag.ErrHelp {
		return 0, true
	} else if err != nil {
		return 2, true
	} else if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "errant command line arguments after parsed flags: %v\n", flags.Args())
		return 2, true
	} else if len(o.groups) == 0 {
		fmt.Fprintln(stderr, "at least one -group is required")
		return 2, true
	}
	return 0, false
}

func (o *outputOptions) schema() (*Schema, error) {
	if o.schemaFile == "" {
		return DefaultSchema(), nil
	}
	log.Infof("loading schema %s", o.schemaFile)
	return LoadSchema(o.schemaFile)
}

type annotationEnrichment struct {
	outputOptions
	background string
}

func (cmd *annotationEnrichment) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cmd.background, "background", "", "background variant annotation `file`")
	cmd.register(flags)
	if code, stop := cmd.parseArgs(flags, args, stderr); stop {
		return code
	}
	if cmd.background == "" {
		fmt.Fprintln(stderr, "-background is required")
		return 2
	}
	err = cmd.run()
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *annotationEnrichment) run() error {
	schema, err := cmd.schema()
	if err != nil {
		return err
	}
	specs := append([]groupSpec{{Label: schema.BackgroundLabel, Path: cmd.background}}, cmd.groups...)
	for _, g := range cmd.groups {
		if g.Label == schema.BackgroundLabel {
			return fmt.Errorf("group label %q is reserved for the background column", g.Label)
		}
	}
	loaded, err := schema.loadGroups(specs, cmd.threads)
	if err != nil {
		return err
	}
	background, groups := loaded[0], loaded[1:]
	res, err := schema.AnnotationEnrichment(background.Frame, groups)
	if err != nil {
		return err
	}

	out := newOutputSet(cmd.outputDir)
	err = out.Render("raw_mean_by_group_gtex_plot.tsv", res.Means.WriteTSV)
	if err != nil {
		return err
	}
	err = out.Render("gtex_annot_enrich.png", func(w io.Writer) error { return schema.RenderAnnotationChart(w, res) })
	if err != nil {
		return err
	}
	if cmd.npy {
		err = out.Render("raw_mean_by_group_gtex_plot.npy", res.Means.WriteNumpy)
		if err != nil {
			return err
		}
	}
	if cmd.xlsx {
		err = out.Render("gtex_annot_enrich.xlsx", func(w io.Writer) error { return WriteAnnotationWorkbook(w, res) })
		if err != nil {
			return err
		}
	}
	if cmd.html {
		err = out.Render("gtex_annot_enrich.html", func(w io.Writer) error { return schema.RenderAnnotationHTML(w, res) })
		if err != nil {
			return err
		}
	}
	return out.Commit()
}
