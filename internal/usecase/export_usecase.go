package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

// exportColumns are written in this order, with these headers
var exportColumns = []struct {
	key    string
	header string
}{
	{"id", "RESUME ID"},
	{"owner", "OWNER"},
	{"name", "NAME"},
	{"birth_date", "BIRTH DATE"},
	{"education", "EDUCATION"},
	{"email", "EMAIL"},
	{"phone", "PHONE"},
	{"abilities", "ABILITIES"},
	{"experiences", "EXPERIENCES"},
	{"achievements", "ACHIEVEMENTS"},
	{"avatar_url", "AVATAR URL"},
	{"social_handle", "SOCIAL HANDLE"},
}

type exportUsecase struct {
	resumes domain.ResumeUsecase
	now     func() time.Time
}

// NewExportUsecase creates a new directory export usecase instance
func NewExportUsecase(resumes domain.ResumeUsecase) domain.ExportUsecase {
	return &exportUsecase{resumes: resumes, now: time.Now}
}

// ExportDirectory renders the cached directory as xlsx (default) or csv.
// Returns (content, filename, error).
func (u *exportUsecase) ExportDirectory(ctx context.Context, format string) ([]byte, string, error) {
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, "", apperror.New(http.StatusBadRequest, fmt.Sprintf("unsupported export format: %s", format), nil)
	}

	resumes, err := u.resumes.CachedResumes(ctx)
	if err != nil {
		return nil, "", err
	}

	if format == "csv" {
		return u.exportCSV(resumes)
	}
	return u.exportExcel(resumes)
}

// exportExcel generates an Excel file from the directory
func (u *exportUsecase) exportExcel(resumes []domain.Resume) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Resumes"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", apperror.Internal(err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.header)
	}

	// Dark Blue background with White text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, r := range resumes {
		for colIdx, col := range exportColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, fieldValue(r, col.key))
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("resume_directory_%s.xlsx", u.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// exportCSV generates a CSV file from the directory
func (u *exportUsecase) exportCSV(resumes []domain.Resume) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col.key
	}
	_ = w.Write(header)

	for _, r := range resumes {
		row := make([]string, len(exportColumns))
		for i, col := range exportColumns {
			row[i] = csvSafe(fieldValue(r, col.key))
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write CSV file: %w", err))
	}

	filename := fmt.Sprintf("resume_directory_%s.csv", u.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// csvSafe keeps spreadsheet apps from evaluating user text as a formula
func csvSafe(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

// fieldValue flattens one resume field into a cell
func fieldValue(r domain.Resume, field string) string {
	switch field {
	case "id":
		return r.ID
	case "owner":
		return r.Owner
	case "name":
		return r.Name
	case "birth_date":
		return r.BirthDate
	case "education":
		return r.Education
	case "email":
		return r.Email
	case "phone":
		return r.Phone
	case "abilities":
		return strings.Join(r.Abilities, "; ")
	case "experiences":
		return joinEntries(r.Experiences)
	case "achievements":
		return joinEntries(r.Achievements)
	case "avatar_url":
		// Inline data URIs would blow past spreadsheet cell limits
		if strings.HasPrefix(r.AvatarURL, "data:") {
			return "(inline)"
		}
		return r.AvatarURL
	case "social_handle":
		return r.SocialHandle
	default:
		return ""
	}
}

func joinEntries(entries []domain.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e.Verified {
			parts[i] = e.Text + " [verified]"
		} else {
			parts[i] = e.Text
		}
	}
	return strings.Join(parts, "; ")
}
