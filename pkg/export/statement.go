package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/campuscash/campuscash-go/services"
)

// statementHeaders is the column order of an exported statement.
var statementHeaders = []string{"Date", "Type", "Amount", "Counterparty", "Message"}

// Statement is a renderable view of a transaction history.
type Statement struct {
	Owner        string
	GeneratedAt  time.Time
	Transactions []services.Transaction
}

// NewStatement builds a statement for the given owner.
func NewStatement(owner string, transactions []services.Transaction) Statement {
	return Statement{Owner: owner, GeneratedAt: time.Now(), Transactions: transactions}
}

func (s Statement) rows() [][]string {
	rows := make([][]string, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		rows = append(rows, []string{
			tx.CreatedAt.Format("2006-01-02 15:04"),
			string(tx.Type),
			strconv.FormatInt(tx.Amount, 10),
			counterparty(tx),
			tx.Message,
		})
	}
	return rows
}

func counterparty(tx services.Transaction) string {
	switch {
	case tx.Type == services.TransactionGive && tx.FromUserID != nil:
		return fmt.Sprintf("user %d", *tx.FromUserID)
	case tx.Type == services.TransactionRedeem && tx.ToUserID != nil:
		return fmt.Sprintf("user %d", *tx.ToUserID)
	}
	return ""
}

// CSV renders the statement as CSV bytes.
func (s Statement) CSV() ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(statementHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range s.rows() {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the statement as a tabular PDF document.
func (s Statement) PDF() ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := "Transaction Statement"
	if s.Owner != "" {
		title = fmt.Sprintf("Transaction Statement - %s", s.Owner)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("generated %s", s.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(statementHeaders))
	for _, header := range statementHeaders {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range s.rows() {
		for _, value := range row {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
