// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package enrich

import (
	"bytes"
	"image/png"
	"io"
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type cmdSuite struct{}

var _ = check.Suite(&cmdSuite{})

const (
	backgroundTSV = "variant_id\tATAC_peak_dist\tintron_variant_d\tsplice_region_variant_d\n" +
		"v0\t0\t1\t0\n" +
		"v1\t0\t0\t0\n" +
		"v2\t100\t0\t1\n" +
		"v3\t1000\t0\t0\n" +
		"v4\t1000\t0\t0\n" +
		"v5\t1000\t0\t0\n" +
		"v6\t1000\t0\t0\n" +
		"v7\t1000\t1\t0\n" +
		"v8\t1000\t1\t0\n" +
		"v9\t1000\t1\t0\n"
	day0TSV = "phenotype_id\tvariant_id\tpip\tcs_id\tATAC_peak_dist\tintron_variant_d\tsplice_region_variant_d\n" +
		"g1\tv0\t0.005\tcs1\t0\t1\t0\n" +
		"g2\tv1\t0.95\tcs2\t0\t0\t0\n"
	day7CSV = "phenotype_id,variant_id,pip,cs_id,ATAC_peak_dist,intron_variant_d,splice_region_variant_d\n" +
		"g1,v0,0.005,cs1,0,1,0\n" +
		"g3,v7,0.05,cs3,1000,1,0\n" +
		"g4,v8,0.3,cs4,,1,0\n" +
		"g4,v9,0.99,cs4,5000,0,1\n"
)

func writeInputs(c *check.C) string {
	dir := c.MkDir()
	for fnm, content := range map[string]string{
		"background.tsv": backgroundTSV,
		"day0.tsv":       day0TSV,
		"day7.csv":       day7CSV,
	} {
		c.Assert(os.WriteFile(dir+"/"+fnm, []byte(content), 0666), check.IsNil)
	}
	return dir
}

func (s *cmdSuite) TestAnnotationEnrichment(c *check.C) {
	in := writeInputs(c)
	out := c.MkDir() + "/out"
	var stderr bytes.Buffer
	exited := (&annotationEnrichment{}).RunCommand("enrich", []string{
		"-background", in + "/background.tsv",
		"-group", "day0=" + in + "/day0.tsv",
		"-group", "day7=" + in + "/day7.csv",
		"-output-dir", out,
		"-threads", "2",
		"-output-npy", "-output-xlsx", "-output-html",
	}, nil, os.Stderr, &stderr)
	c.Assert(exited, check.Equals, 0, check.Commentf("%s", stderr.String()))

	tsv, err := os.ReadFile(out + "/raw_mean_by_group_gtex_plot.tsv")
	c.Assert(err, check.IsNil)
	c.Check(string(tsv), check.Equals, "annotation\tday0\tday7\tbackground_snps\n"+
		"intron_variant_d\t0.5\t0.75\t0.4\n"+
		"ATAC__in_a_peak\t1\t0.3333333333333333\t0.2\n"+
		"ATAC__500bp_from_peak\t1\t0.3333333333333333\t0.3\n")

	f, err := os.Open(out + "/gtex_annot_enrich.png")
	c.Assert(err, check.IsNil)
	defer f.Close()
	_, err = png.Decode(f)
	c.Check(err, check.IsNil)

	for _, fnm := range []string{"raw_mean_by_group_gtex_plot.npy", "gtex_annot_enrich.xlsx", "gtex_annot_enrich.html"} {
		fi, err := os.Stat(out + "/" + fnm)
		c.Check(err, check.IsNil)
		if err == nil {
			c.Check(fi.Size() > 0, check.Equals, true, check.Commentf("%s", fnm))
		}
	}
	leftovers, err := os.ReadDir(out)
	c.Assert(err, check.IsNil)
	for _, ent := range leftovers {
		c.Check(strings.HasSuffix(ent.Name(), "~"), check.Equals, false)
	}
}

func (s *cmdSuite) TestPIPEnrichment(c *check.C) {
	in := writeInputs(c)
	out := c.MkDir()
	var stderr bytes.Buffer
	exited := (&pipEnrichment{}).RunCommand("enrich", []string{
		"-group", "day0=" + in + "/day0.tsv",
		"-group", "day7=" + in + "/day7.csv",
		"-output-dir", out,
		"-output-xlsx",
	}, nil, os.Stderr, &stderr)
	c.Assert(exited, check.Equals, 0, check.Commentf("%s", stderr.String()))

	tsv, err := os.ReadFile(out + "/day0_mean_array_by_pip.tsv")
	c.Assert(err, check.IsNil)
	c.Check(string(tsv), check.Equals, "annotation\tPIP<0.01\t0.01<PIP<0.1\t0.1<PIP<0.5\t0.5<PIP<0.9\t0.9<PIP\n"+
		"intron_variant_d\t1\tNaN\tNaN\tNaN\t0\n"+
		"ATAC__in_a_peak\t1\tNaN\tNaN\tNaN\t1\n"+
		"ATAC__500bp_from_peak\t1\tNaN\tNaN\tNaN\t1\n")

	for _, fnm := range []string{
		"day0_annotation_by_pip.png", "day0_annotation_by_pip.xlsx",
		"day7_mean_array_by_pip.tsv", "day7_annotation_by_pip.png", "day7_annotation_by_pip.xlsx",
	} {
		_, err := os.Stat(out + "/" + fnm)
		c.Check(err, check.IsNil, check.Commentf("%s", fnm))
	}
	_, err = os.Stat(out + "/day0_annotation_by_pip.html")
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func (s *cmdSuite) TestSchemaMismatchWritesNothing(c *check.C) {
	in := writeInputs(c)
	err := os.WriteFile(in+"/other.tsv", []byte("phenotype_id\tvariant_id\tpip\tpromoter_d\ng1\tv0\t0.5\t1\n"), 0666)
	c.Assert(err, check.IsNil)
	out := c.MkDir()
	var stderr bytes.Buffer
	exited := (&annotationEnrichment{}).RunCommand("enrich", []string{
		"-background", in + "/background.tsv",
		"-group", "day0=" + in + "/day0.tsv",
		"-group", "other=" + in + "/other.tsv",
		"-output-dir", out,
	}, nil, os.Stderr, &stderr)
	c.Check(exited, check.Equals, 1)
	c.Check(stderr.String(), check.Matches, `group "other" annotation columns differ from group "day0".*\n`)
	ents, err := os.ReadDir(out)
	c.Assert(err, check.IsNil)
	c.Check(ents, check.HasLen, 0)
}

func (s *cmdSuite) TestMissingInput(c *check.C) {
	in := writeInputs(c)
	var stderr bytes.Buffer
	exited := (&pipEnrichment{}).RunCommand("enrich", []string{
		"-group", "day0=" + in + "/day0.tsv",
		"-group", "day3=" + in + "/nonexistent.tsv",
		"-output-dir", c.MkDir(),
	}, nil, os.Stderr, &stderr)
	c.Check(exited, check.Equals, 1)
	c.Check(stderr.String(), check.Matches, `day3: open .*/nonexistent.tsv: no such file or directory\n`)
}

func (s *cmdSuite) TestSchemaFile(c *check.C) {
	in := writeInputs(c)
	schema := in + "/schema.yaml"
	err := os.WriteFile(schema, []byte("pip_bin_edges: [0, 0.5, 1]\n"), 0666)
	c.Assert(err, check.IsNil)
	out := c.MkDir()
	var stderr bytes.Buffer
	exited := (&pipEnrichment{}).RunCommand("enrich", []string{
		"-group", "day7=" + in + "/day7.csv",
		"-schema", schema,
		"-output-dir", out,
	}, nil, os.Stderr, &stderr)
	c.Assert(exited, check.Equals, 0, check.Commentf("%s", stderr.String()))
	tsv, err := os.ReadFile(out + "/day7_mean_array_by_pip.tsv")
	c.Assert(err, check.IsNil)
	c.Check(strings.SplitN(string(tsv), "\n", 2)[0], check.Equals, "annotation\tPIP<0.5\t0.5<PIP")
}

func (s *cmdSuite) TestUsage(c *check.C) {
	in := writeInputs(c)
	for _, trial := range []struct {
		cmd  interface {
			RunCommand(string, []string, io.Reader, io.Writer, io.Writer) int
		}
		args []string
		code int
		msg  string
	}{
		{&pipEnrichment{}, []string{"-help"}, 0, `(?s).*-group.*`},
		{&pipEnrichment{}, nil, 2, `at least one -group is required\n`},
		{&pipEnrichment{}, []string{"-group", "day0"}, 2, `(?s)invalid value "day0" for flag -group: invalid group "day0": expected label=path.*`},
		{&pipEnrichment{}, []string{"-group", "=x.tsv"}, 2, `(?s)invalid value .*expected label=path.*`},
		{&pipEnrichment{}, []string{"-group", "a/b=x.tsv"}, 2, `(?s)invalid value .*must not contain a path separator.*`},
		{&pipEnrichment{}, []string{"-group", "a=x.tsv", "-group", "a=y.tsv"}, 2, `(?s)invalid value .*duplicate group label "a".*`},
		{&pipEnrichment{}, []string{"-group", "a=x.tsv", "extra"}, 2, `errant command line arguments after parsed flags: \[extra\]\n`},
		{&annotationEnrichment{}, []string{"-group", "day0=" + in + "/day0.tsv"}, 2, `-background is required\n`},
		{&annotationEnrichment{}, []string{"-background", in + "/background.tsv", "-group", "background_snps=" + in + "/day0.tsv", "-output-dir", c.MkDir()}, 1, `group label "background_snps" is reserved for the background column\n`},
	} {
		var stderr bytes.Buffer
		exited := trial.cmd.RunCommand("enrich", trial.args, nil, os.Stdout, &stderr)
		c.Check(exited, check.Equals, trial.code, check.Commentf("%q", trial.args))
		c.Check(stderr.String(), check.Matches, trial.msg, check.Commentf("%q", trial.args))
	}
}

func (s *cmdSuite) TestDispatch(c *check.C) {
	var stdout, stderr bytes.Buffer
	exited := handler.RunCommand("enrich", []string{"nonexistent-subcommand"}, nil, &stdout, &stderr)
	c.Check(exited, check.Equals, 2)
	c.Check(stderr.String(), check.Matches, `(?s).*annotation-enrichment.*pip-enrichment.*`)
}
