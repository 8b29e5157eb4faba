package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/latex"
	"github.com/jonathan/resume-tailor/internal/observability"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the sections of a LaTeX resume or print one section body",
	RunE:  runSections,
}

var (
	sectionsTex   string
	sectionsTitle string
)

func init() {
	sectionsCmd.Flags().StringVar(&sectionsTex, "tex", "", "Path to the LaTeX resume (required)")
	sectionsCmd.Flags().StringVarP(&sectionsTitle, "title", "t", "", "Print the body of the section with this title")
	_ = sectionsCmd.MarkFlagRequired("tex")

	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, _ []string) error {
	doc, err := document.FileStore{}.Load(sectionsTex)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sectionsTitle == "" {
		observability.NewPrinter(out).PrintSections(doc, latex.ListSections(doc))
		return nil
	}

	if _, ok := latex.FindSection(doc, sectionsTitle); !ok {
		return fmt.Errorf("section %q not found in %s", sectionsTitle, sectionsTex)
	}
	_, err = fmt.Fprintln(out, latex.ExtractSection(doc, sectionsTitle))
	return err
}
