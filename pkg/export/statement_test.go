package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscash/campuscash-go/services"
)

func sampleTransactions() []services.Transaction {
	professor := int64(7)
	company := int64(12)
	return []services.Transaction{
		{
			ID:         1,
			Type:       services.TransactionGive,
			Amount:     50,
			FromUserID: &professor,
			Message:    "top of the class",
			CreatedAt:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:        2,
			Type:      services.TransactionRedeem,
			Amount:    30,
			ToUserID:  &company,
			CreatedAt: time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		},
	}
}

func TestStatementCSV(t *testing.T) {
	statement := NewStatement("Ana", sampleTransactions())

	data, err := statement.CSV()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, statementHeaders, records[0])
	assert.Equal(t, []string{"2026-03-10 09:30", "give", "50", "user 7", "top of the class"}, records[1])
	assert.Equal(t, []string{"2026-03-12 14:00", "redeem", "30", "user 12", ""}, records[2])
}

func TestStatementPDF(t *testing.T) {
	statement := NewStatement("Ana", sampleTransactions())

	data, err := statement.PDF()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output is a PDF document")
}

func TestStatementEmpty(t *testing.T) {
	statement := NewStatement("", nil)

	data, err := statement.CSV()
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "headers only")

	_, err = statement.PDF()
	assert.NoError(t, err)
}
