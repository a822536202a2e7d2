package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-bot/internal/config"
)

const sampleVCards = `BEGIN:VCARD
VERSION:4.0
FN:John Doe
BDAY:1990-05-20
END:VCARD
BEGIN:VCARD
VERSION:4.0
N:Smith;Jane;;;
BDAY:--0704
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:No Birthday
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:Broken Date
BDAY:not-a-date
END:VCARD
`

func TestLoadVCardRecords(t *testing.T) {
	records, err := LoadVCardRecords(strings.NewReader(sampleVCards), 3)
	require.NoError(t, err)

	assert.Equal(t, []PersonRecord{
		{Name: "John Doe", Date: "20/5/1990", NotificationBefore: 3},
		{Name: "Jane Smith", Date: "4/7", NotificationBefore: 3},
	}, records)
}

func TestLoadVCardRecords_RecordsMatch(t *testing.T) {
	records, err := LoadVCardRecords(strings.NewReader(sampleVCards), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	events, err := Evaluate(records[1], time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: EventBirthday}}, events)
}

func TestLoadVCardRecords_Garbage(t *testing.T) {
	_, err := LoadVCardRecords(strings.NewReader("this is not a vcard"), 0)
	assert.Error(t, err)
}

func TestLoadVCardRecords_BadCardAfterCardsWithoutBirthday(t *testing.T) {
	vcf := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:No Birthday\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Broken\r\nEND:VCALENDAR\r\n" +
		"BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Vera\r\nBDAY:--0615\r\nEND:VCARD\r\n"

	records, err := LoadVCardRecords(strings.NewReader(vcf), 0)
	require.NoError(t, err)
	assert.Equal(t, []PersonRecord{{Name: "Vera", Date: "15/6"}}, records)
}

func TestLoadVCardFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "friends.vcf")
	require.NoError(t, os.WriteFile(path, []byte(sampleVCards), config.FilePermUserRW))

	records, err := LoadVCardFile(path, 1)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = LoadVCardFile(filepath.Join(t.TempDir(), "missing.vcf"), 1)
	assert.ErrorContains(t, err, config.ErrVCardOpen)
}

func TestParseVCardDate(t *testing.T) {
	tests := []struct {
		value     string
		yearKnown bool
		month     time.Month
		day       int
	}{
		{"1990-05-20", true, time.May, 20},
		{"19900520", true, time.May, 20},
		{"1990-05-20T00:00:00Z", true, time.May, 20},
		{"--05-20", false, time.May, 20},
		{"--0520", false, time.May, 20},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, known, err := parseVCardDate(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.yearKnown, known)
			assert.Equal(t, tt.month, got.Month())
			assert.Equal(t, tt.day, got.Day())
		})
	}

	_, _, err := parseVCardDate("20/05/1990")
	assert.Error(t, err)
}
