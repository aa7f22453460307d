package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// ReceiptGenerator 收據協作者：給一筆完成的停車紀錄，回傳收據檔案路徑
// 產生失敗不影響結帳本身，由呼叫端決定如何降級
type ReceiptGenerator interface {
	Generate(slot int, carNumber string, checkIn, checkOut time.Time, cost float64) (string, error)
}

// PDFReceiptService 用 PDF 輸出停車收據
type PDFReceiptService struct {
	dir string
}

func NewPDFReceiptService(dir string) (*PDFReceiptService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt directory %s: %w", dir, err)
	}
	return &PDFReceiptService{dir: dir}, nil
}

func (s *PDFReceiptService) Generate(slot int, carNumber string, checkIn, checkOut time.Time, cost float64) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	pdf.CellFormat(200, 10, "Car Parking Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	hours := int(checkOut.Sub(checkIn).Seconds()) / 3600
	pdf.CellFormat(200, 10, fmt.Sprintf("Slot: %d", slot), "", 1, "L", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Car Number: %s", carNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Check-in Time: %s", checkIn.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Check-out Time: %s", checkOut.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Total Duration: %d hour(s)", hours), "", 1, "L", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Total Cost: INR %.2f", cost), "", 1, "L", false, 0, "")

	// 檔名帶 uuid，同一車牌重複進出不會互相覆蓋
	name := fmt.Sprintf("receipt_%s_%d_%s.pdf", carNumber, slot, uuid.NewString())
	path := filepath.Join(s.dir, name)
	if err := pdf.OutputFileAndClose(path); err != nil {
		log.Printf("Failed to write receipt %s: %v", path, err)
		return "", fmt.Errorf("%v: %w", err, ErrReceiptGeneration)
	}

	log.Printf("Receipt generated: %s", path)
	return path, nil
}
