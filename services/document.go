package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gosimple/slug"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"
)

// Document formats a project file can be generated in
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatTXT  = "txt"
)

// AllowedDocumentFormats lists the formats Generate understands
var AllowedDocumentFormats = []string{FormatPDF, FormatXLSX, FormatTXT}

// IsAllowedDocumentFormat reports whether format can be generated
func IsAllowedDocumentFormat(format string) bool {
	for _, f := range AllowedDocumentFormats {
		if f == format {
			return true
		}
	}
	return false
}

// DocumentGenerator writes the project summary file kept next to each project
type DocumentGenerator interface {
	EnsureFolder(title string) (string, error)
	// RenameFolder moves the folder kept for oldTitle to the one for newTitle.
	// It returns "" when there was nothing to move.
	RenameFolder(oldTitle, newTitle string) (string, error)
	Generate(project *models.Project, format, folder string) (string, error)
	Delete(path string) error
}

// FileDocumentGenerator writes documents under a root directory on local disk
type FileDocumentGenerator struct {
	root string
	now  func() time.Time
}

// NewFileDocumentGenerator returns a generator rooted at dir
func NewFileDocumentGenerator(dir string) *FileDocumentGenerator {
	return &FileDocumentGenerator{root: dir, now: time.Now}
}

func folderName(title string) string {
	if name := slug.Make(title); name != "" {
		return name
	}
	return "project"
}

// EnsureFolder creates {root}/{slug(title)} if needed and returns its path
func (g *FileDocumentGenerator) EnsureFolder(title string) (string, error) {
	folder := filepath.Join(g.root, folderName(title))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("failed to create project folder: %v", err)
	}
	return folder, nil
}

// RenameFolder moves {root}/{slug(oldTitle)} to {root}/{slug(newTitle)}
func (g *FileDocumentGenerator) RenameFolder(oldTitle, newTitle string) (string, error) {
	from := filepath.Join(g.root, folderName(oldTitle))
	to := filepath.Join(g.root, folderName(newTitle))

	if _, err := os.Stat(from); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read project folder: %v", err)
	}
	if from == to {
		return to, nil
	}
	if _, err := os.Stat(to); err == nil {
		return "", fmt.Errorf("project folder %s already exists", filepath.Base(to))
	}
	if err := os.Rename(from, to); err != nil {
		return "", fmt.Errorf("failed to rename project folder: %v", err)
	}
	return to, nil
}

// Generate writes a new document for project into folder and returns its path
func (g *FileDocumentGenerator) Generate(project *models.Project, format, folder string) (string, error) {
	if project == nil {
		return "", errors.New("project is required")
	}
	format = strings.ToLower(format)
	if !IsAllowedDocumentFormat(format) {
		return "", fmt.Errorf("unsupported document format %q", format)
	}

	path := filepath.Join(folder, fmt.Sprintf("%s_%s.%s", folderName(project.Title), g.now().Format("20060102150405"), format))

	var err error
	switch format {
	case FormatPDF:
		err = writeProjectPDF(project, path)
	case FormatXLSX:
		err = writeProjectXLSX(project, path)
	default:
		err = os.WriteFile(path, []byte(projectText(project)), 0o644)
	}
	if err != nil {
		return "", err
	}

	utils.LogDebug("Generated %s document for project %s at %s", format, project.ID, path)
	return path, nil
}

// Delete removes a previously generated document. A missing file is fine.
func (g *FileDocumentGenerator) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// projectFields flattens the project into label/value pairs shared by every format
func projectFields(p *models.Project) [][2]string {
	fields := [][2]string{
		{"Title", p.Title},
		{"Description", p.Description},
		{"Status", string(p.Status)},
		{"Active", fmt.Sprintf("%t", p.IsActive)},
		{"Start Date", formatDate(&p.StartDate)},
		{"End Date", formatDate(p.EndDate)},
		{"Domain", p.DomainName},
		{"Domain Start", formatDate(p.DomainStartDate)},
		{"Domain Expiry", formatDate(p.DomainEndDate)},
		{"Renewal Price", formatAmount(p.EffectiveRenewalPrice())},
	}
	if p.Budget != nil {
		fields = append(fields, [2]string{"Budget", fmt.Sprintf("%.2f", *p.Budget)})
	}
	if p.Customer != nil {
		fields = append(fields,
			[2]string{"Customer", p.Customer.Name},
			[2]string{"Customer Email", p.Customer.Email},
			[2]string{"Customer Company", p.Customer.Company},
		)
	}
	if p.CreatedBy != nil {
		fields = append(fields, [2]string{"Created By", p.CreatedBy.FullName})
	}
	return fields
}

var renewalHeaders = []string{"Renewed At", "New Expiry", "Years", "Amount", "Payment ID", "Order ID"}

func renewalRow(r models.RenewalRecord) []string {
	return []string{
		r.RenewedAt.Format("2006-01-02 15:04"),
		r.NewEndDate.Format("2006-01-02"),
		fmt.Sprintf("%d", r.Duration),
		formatAmount(r.Amount),
		r.PaymentID,
		r.OrderID,
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// formatAmount renders paise as rupees
func formatAmount(paise int64) string {
	return fmt.Sprintf("%.2f", float64(paise)/100)
}

func projectText(p *models.Project) string {
	var b strings.Builder
	b.WriteString("PROJECT SUMMARY\n")
	b.WriteString("===============\n\n")
	for _, f := range projectFields(p) {
		fmt.Fprintf(&b, "%-18s %s\n", f[0]+":", f[1])
	}
	if len(p.RenewalHistory) > 0 {
		b.WriteString("\nRENEWAL HISTORY\n")
		b.WriteString("---------------\n")
		b.WriteString(strings.Join(renewalHeaders, " | ") + "\n")
		for _, r := range p.RenewalHistory {
			b.WriteString(strings.Join(renewalRow(r), " | ") + "\n")
		}
	}
	return b.String()
}

func writeProjectPDF(p *models.Project, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Project Summary")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	for _, f := range projectFields(p) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 8, f[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, f[1], "", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	if len(p.RenewalHistory) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 10, "Renewal History")
		pdf.Ln(10)

		colWidths := []float64{32, 24, 14, 24, 48, 48}
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		for i, h := range renewalHeaders {
			pdf.CellFormat(colWidths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, r := range p.RenewalHistory {
			for i, v := range renewalRow(r) {
				pdf.CellFormat(colWidths[i], 7, v, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %v", err)
	}
	return nil
}

func writeProjectXLSX(p *models.Project, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Project")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %v", err)
	}

	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font

	for _, f := range projectFields(p) {
		row := sheet.AddRow()
		label := row.AddCell()
		label.SetString(f[0])
		label.SetStyle(bold)
		row.AddCell().SetString(f[1])
	}

	if len(p.RenewalHistory) > 0 {
		history, err := file.AddSheet("Renewals")
		if err != nil {
			return fmt.Errorf("failed to create sheet: %v", err)
		}
		header := history.AddRow()
		for _, h := range renewalHeaders {
			cell := header.AddCell()
			cell.SetString(h)
			cell.SetStyle(bold)
		}
		for _, r := range p.RenewalHistory {
			row := history.AddRow()
			for _, v := range renewalRow(r) {
				row.AddCell().SetString(v)
			}
		}
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("failed to write xlsx: %v", err)
	}
	return nil
}
