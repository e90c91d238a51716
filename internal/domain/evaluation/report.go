package evaluation

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WriteEvaluationPDF renders a one-page summary of e with its scored criteria.
func WriteEvaluationPDF(w io.Writer, e Evaluation) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Evaluation summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	title := e.TypeDisplayName
	if title == "" {
		title = e.EvaluationTypeID
	}
	pdf.Cell(0, 8, fmt.Sprintf("Type: %s", title))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", e.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Evaluator: %s", e.EvaluatorID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", e.EvaluatedAt.UTC().Format("2006-01-02")))
	pdf.Ln(7)
	score := "n/a"
	if e.OverallScore != nil {
		score = fmt.Sprintf("%.2f%%", *e.OverallScore)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Overall: %s (%s)", score, e.OverallRating))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Criterion", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Weight", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Score", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Max", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, d := range e.Details {
		name := d.CriterionName
		if name == "" {
			name = d.CriterionID
		}
		pdf.CellFormat(90, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", d.Weight), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", d.ScoreGiven), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", d.MaxScore), "1", 1, "R", false, 0, "")
	}

	if e.Comments != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, "Comments")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, e.Comments, "", "L", false)
	}

	return pdf.Output(w)
}
