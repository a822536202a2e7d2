package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/tartampluch/birthday-bot/internal/config"
)

// EnvLookup matches the signature of os.LookupEnv so tests can inject values.
type EnvLookup func(key string) (string, bool)

// LoadRecords reads the friend list from FRIENDS_CONFIG.
// It never fails: a missing or malformed value is logged as critical and
// yields an empty slice, so a broken deployment degrades to "no records".
func LoadRecords(lookup EnvLookup) []PersonRecord {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	raw, ok := lookup(config.EnvFriendsConfig)
	if !ok || raw == "" {
		slog.Error(config.ErrConfigMissing, config.LogKeyComponent, config.CompLoader)
		return []PersonRecord{}
	}

	// Shells and hosting dashboards sometimes hand over pre-quoted JSON.
	raw = stripQuotes(raw, '\'')
	raw = stripQuotes(raw, '"')

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Error(config.ErrConfigParse,
			config.LogKeyComponent, config.CompLoader,
			config.LogKeyError, err,
		)
		return []PersonRecord{}
	}

	// A record with wrong-typed fields is dropped on its own; the others load.
	records := make([]PersonRecord, 0, len(items))
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			slog.Error(config.ErrRecordDecode,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyIndex, i,
				config.LogKeyError, err,
			)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// recordWire is the JSON shape of a record. JSON has a single number type,
// so the lead time is read as a float and must hold a whole value.
type recordWire struct {
	Name               string  `json:"name"`
	Date               string  `json:"date"`
	NotificationBefore float64 `json:"notification_before"`
}

func decodeRecord(data json.RawMessage) (PersonRecord, error) {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return PersonRecord{}, err
	}

	n := w.NotificationBefore
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return PersonRecord{}, fmt.Errorf("%s: %v", config.ErrLeadTime, n)
	}

	return PersonRecord{
		Name:               w.Name,
		Date:               w.Date,
		NotificationBefore: int(n),
	}, nil
}

// stripQuotes removes one enclosing layer of q when both ends carry it.
func stripQuotes(s string, q byte) string {
	if len(s) >= 2 && s[0] == q && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}
