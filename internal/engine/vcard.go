package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/birthday-bot/internal/config"
)

// LoadVCardFile opens path and converts its cards into person records.
func LoadVCardFile(path string, defaultBefore int) ([]PersonRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardOpen, err)
	}
	// Best effort close. Errors in Close() for read-only files are rarely actionable here.
	defer func() { _ = f.Close() }()

	return LoadVCardRecords(f, defaultBefore)
}

// LoadVCardRecords converts a vCard stream into person records.
// Cards without a usable BDAY are skipped; malformed cards are logged and
// skipped so one bad entry does not hide the rest of the address book.
func LoadVCardRecords(r io.Reader, defaultBefore int) ([]PersonRecord, error) {
	decoder := vcard.NewDecoder(r)
	var records []PersonRecord
	processed := 0

	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// An error before any card decoded means the stream is not vCard at all.
			if processed == 0 {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyError, err)
			continue
		}
		processed++

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, yearKnown, err := parseVCardDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyValue, bday.Value)
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Name(); n != nil {
			name = joinName(n)
		}

		date := fmt.Sprintf(config.FormatRecordDate, birthDate.Day(), int(birthDate.Month()))
		if yearKnown {
			date = fmt.Sprintf(config.FormatRecordDateYear, birthDate.Day(), int(birthDate.Month()), birthDate.Year())
		}

		records = append(records, PersonRecord{
			Name:               name,
			Date:               date,
			NotificationBefore: defaultBefore,
		})
	}

	slog.Debug(config.MsgVCardLoaded,
		config.LogKeyComponent, config.CompLoader,
		config.LogKeyCount, len(records),
		config.LogKeyProcessed, processed)
	return records, nil
}

func joinName(n *vcard.Name) string {
	switch {
	case n.GivenName != "" && n.FamilyName != "":
		return n.GivenName + " " + n.FamilyName
	case n.GivenName != "":
		return n.GivenName
	case n.FamilyName != "":
		return n.FamilyName
	default:
		return config.FallbackName
	}
}

// parseVCardDate handles the BDAY formats found in the wild.
func parseVCardDate(value string) (time.Time, bool, error) {
	// Full dates (Year known)
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (Year unknown) - vCard specific
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
