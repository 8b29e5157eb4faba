// Package main provides the resume_tailor command: rewrite the summary and
// skills sections of a LaTeX resume for a job description and compile it.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Tailor a LaTeX resume to a job description",
	Long: `Resume Tailor rewrites the "Professional Summary" and "Technical Skills and Interests"
sections of a LaTeX resume for a job description, splices them back into the source
and compiles the result with pdflatex.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (environment variables override its values)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress and before/after sections")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
