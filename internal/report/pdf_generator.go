package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"
	"github.com/user/fluxplot_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // manually tracked Y position for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["warning"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(200, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200) // Light grey
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitText(text, pdfContentWidth)
	s.checkAddPage(math.Max(1, float64(len(lines))) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1 // small gap after paragraph
}

func (s *pdfStyler) addSpacer(height float64) {
	s.currentY += height
	if s.currentY > s.pageHeight {
		s.newPage()
	}
}

// writeTable draws a bordered table; widthsRel are fractions of the content width.
func (s *pdfStyler) writeTable(headers []string, widthsRel []float64, rows [][]string) {
	widths := make([]float64, len(widthsRel))
	for i, rel := range widthsRel {
		widths[i] = rel * pdfContentWidth
	}
	drawHeader := func() {
		sX := pdfMargin
		s.applyStyle("tableHeader")
		for i, header := range headers {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
			sX += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(s.lineHeight * 2)
	drawHeader()
	for _, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			drawHeader()
		}
		sX := pdfMargin
		s.applyStyle("tableCell")
		for i, cell := range row {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			sX += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	// gofpdf refers to registered images by name
	s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(imageName, x, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.5g", v)
}

// BuildPDFReport writes a report with the run summary followed by one page per chart.
// images holds PNG data keyed by chart name; charts without an image get a placeholder line.
func BuildPDFReport(filepath string, summary *analysis.Summary, charts []Chart, images map[string][]byte) error {
	if summary == nil {
		return fmt.Errorf("no summary to report")
	}

	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Monte Carlo Simulation Results", "h1", "C")
	styler.addSpacer(5)
	styler.writeParagraph(fmt.Sprintf("Assembly length: %s    Mesh points: %d    Generations: %d",
		formatValue(summary.Length), summary.Meshes, summary.K.Generations), "normal", "L")
	styler.addSpacer(3)

	styler.writeParagraph("Multiplication Factor", "h2", "L")
	styler.writeTable(
		[]string{"Generations", "Skipped", "Mean k", "Std Dev", "Final k", "Final Fundamental k"},
		[]float64{0.15, 0.15, 0.175, 0.175, 0.175, 0.175},
		[][]string{{
			fmt.Sprintf("%d", summary.K.Generations),
			fmt.Sprintf("%d", summary.K.Skipped),
			formatValue(summary.K.Mean),
			formatValue(summary.K.StdDev),
			formatValue(summary.K.Final),
			formatValue(summary.K.FinalFundamental),
		}},
	)
	styler.addSpacer(5)

	styler.writeParagraph("Spatial Profiles", "h2", "L")
	rows := make([][]string, 0, len(summary.Profiles))
	for _, ps := range summary.Profiles {
		rows = append(rows, []string{
			ps.Name,
			fmt.Sprintf("%d", ps.Points),
			formatValue(ps.Peak),
			formatValue(ps.PeakPosition),
			formatValue(ps.Mean),
			formatValue(ps.PeakingFactor),
		})
	}
	styler.writeTable(
		[]string{"Profile", "Points", "Peak", "Peak Position", "Mean", "Peaking Factor"},
		[]float64{0.25, 0.1, 0.1625, 0.1625, 0.1625, 0.1625},
		rows,
	)
	styler.addSpacer(5)

	if len(summary.Warnings) > 0 {
		styler.writeParagraph("Warnings", "h2", "L")
		for _, w := range summary.Warnings {
			styler.writeParagraph("- "+w, "warning", "L")
		}
	}

	imgWidth := pdfContentWidth * 0.7
	imgHeight := imgWidth * 0.75 // charts are 4:3

	for _, c := range charts {
		styler.newPage()
		styler.writeParagraph(c.Title, "h2", "L")
		if imgBytes, ok := images[c.Name]; ok && len(imgBytes) > 0 {
			styler.addImage(imgBytes, c.Name, imgWidth, imgHeight, c.FileName("png"))
		} else {
			styler.writeParagraph(fmt.Sprintf("Plot for %s not available.", c.Title), "normal", "L")
		}
	}

	return pdf.OutputFileAndClose(filepath)
}
