package compiler

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// CountPages returns the number of pages in a PDF file.
func CountPages(pdfPath string) (int, error) {
	count, err := api.PageCountFile(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages of %s: %w", pdfPath, err)
	}
	return count, nil
}
