package bufy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/brunoclpinto/BUFY/date"
)

// EncodeLedger writes the ledger as a single indented JSON document with a
// deterministic field order, so two saves of the same state are
// byte-identical and diff cleanly.
func (l *Ledger) EncodeLedger(out io.Writer) error {
	s := l.Snapshot()

	w := &jsonObjectWriter{}
	w.Append("schemaVersion", schemaVersion)
	w.Append("name", s.name)
	w.Append("currency", s.currency)
	w.Append("budgetPeriod", s.budgetPeriod)
	w.Append("createdAt", s.createdAt)
	w.Append("updatedAt", s.updatedAt)
	if len(s.notes) > 0 {
		w.Append("notes", s.notes)
	}
	w.Append("accounts", s.accounts)
	w.Append("categories", s.categories)
	w.Append("transactions", s.transactions)
	w.Append("simulations", s.simulations)
	s.extra.appendTo(w)

	raw, err := w.MarshalJSON()
	if err != nil {
		return Persistencef(err, "encoding ledger %q", s.name)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return Persistencef(err, "encoding ledger %q", s.name)
	}
	buf.WriteByte('\n')
	if _, err := out.Write(buf.Bytes()); err != nil {
		return Persistencef(err, "writing ledger %q", s.name)
	}
	return nil
}

// DecodeLedger reads a ledger document, migrating older schema versions in
// place. Migration notes are recorded on the ledger; cross-reference
// problems do not fail the load and are reported by Warnings.
func DecodeLedger(in io.Reader) (*Ledger, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, Persistencef(err, "reading ledger")
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Persistencef(err, "parsing ledger")
	}

	version := schemaVersion
	if err := pick(raw, "schemaVersion", &version); err != nil {
		return nil, Persistencef(err, "parsing ledger")
	}
	if version > schemaVersion {
		return nil, Persistencef(nil, "ledger schema version %d is newer than supported version %d", version, schemaVersion)
	}
	notes, err := migrate(raw, version)
	if err != nil {
		return nil, err
	}

	l := &Ledger{budgetPeriod: date.Monthly()}
	for key, v := range map[string]any{
		"name":         &l.name,
		"currency":     &l.currency,
		"budgetPeriod": &l.budgetPeriod,
		"createdAt":    &l.createdAt,
		"updatedAt":    &l.updatedAt,
		"notes":        &l.notes,
		"accounts":     &l.accounts,
		"categories":   &l.categories,
		"transactions": &l.transactions,
		"simulations":  &l.simulations,
	} {
		if err := pick(raw, key, v); err != nil {
			return nil, Persistencef(err, "parsing ledger")
		}
	}
	l.extra = extras(raw)
	l.notes = append(l.notes, notes...)

	if l.name == "" {
		return nil, Validationf("ledger file has no name")
	}
	if l.currency == "" {
		return nil, Validationf("ledger file has no currency")
	}
	if err := l.budgetPeriod.Validate(); err != nil {
		return nil, err
	}
	l.refreshRecurrenceMetadata()
	return l, nil
}

// migrate upgrades a raw document from an older schema version, returning
// human-readable notes about what changed.
func migrate(raw map[string]json.RawMessage, version int) ([]string, error) {
	if version >= schemaVersion {
		return nil, nil
	}
	var notes []string

	if version < 2 {
		// v1 had no budget period.
		if _, ok := raw["budgetPeriod"]; !ok {
			raw["budgetPeriod"] = json.RawMessage(`{"every":1,"unit":"month"}`)
			notes = append(notes, "budget period defaulted to monthly")
		}
	}
	if version < 3 {
		// derived recurrence state from before v3 is untrustworthy; decoding
		// rebuilds it from the rules
		notes = append(notes, "recurrence metadata refreshed")

		// v2 accounts had no kind.
		var accounts []map[string]json.RawMessage
		if err := pick(raw, "accounts", &accounts); err != nil {
			return nil, Persistencef(err, "migrating accounts from version %d", version)
		}
		defaulted := 0
		for _, a := range accounts {
			if _, ok := a["kind"]; !ok {
				a["kind"] = json.RawMessage(`"asset"`)
				defaulted++
			}
		}
		if accounts != nil {
			encoded, err := json.Marshal(accounts)
			if err != nil {
				return nil, Persistencef(err, "migrating accounts from version %d", version)
			}
			raw["accounts"] = encoded
		}
		if defaulted > 0 {
			notes = append(notes, fmt.Sprintf("%d account(s) defaulted to kind asset", defaulted))
		}
	}
	if version < 4 {
		// pre-v4 files may predate an explicit base currency.
		var currency string
		if c, ok := raw["currency"]; ok {
			if err := json.Unmarshal(c, &currency); err != nil {
				return nil, Persistencef(err, "migrating currency from version %d", version)
			}
		}
		if currency == "" {
			raw["currency"] = json.RawMessage(`"` + DefaultCurrency + `"`)
			notes = append(notes, "currency defaulted to "+DefaultCurrency)
		}

		// v3 recurrences carried flat end fields.
		var txs []map[string]json.RawMessage
		if err := pick(raw, "transactions", &txs); err != nil {
			return nil, Persistencef(err, "migrating transactions from version %d", version)
		}
		rewritten := 0
		for _, tx := range txs {
			rawRec, ok := tx["recurrence"]
			if !ok {
				continue
			}
			var rec map[string]json.RawMessage
			if err := json.Unmarshal(rawRec, &rec); err != nil {
				return nil, Persistencef(err, "migrating recurrence from version %d", version)
			}
			if _, ok := rec["end"]; ok {
				continue
			}
			end := jsonObjectWriter{}
			switch {
			case rec["maxOccurrences"] != nil:
				end.Append("kind", "after-occurrences").Append("count", rec["maxOccurrences"])
			case rec["endDate"] != nil:
				end.Append("kind", "on-date").Append("date", rec["endDate"])
			default:
				end.Append("kind", "never")
			}
			delete(rec, "maxOccurrences")
			delete(rec, "endDate")
			endRaw, err := end.MarshalJSON()
			if err != nil {
				return nil, Persistencef(err, "migrating recurrence from version %d", version)
			}
			rec["end"] = endRaw
			recRaw, err := json.Marshal(rec)
			if err != nil {
				return nil, Persistencef(err, "migrating recurrence from version %d", version)
			}
			tx["recurrence"] = recRaw
			rewritten++
		}
		if txs != nil {
			encoded, err := json.Marshal(txs)
			if err != nil {
				return nil, Persistencef(err, "migrating transactions from version %d", version)
			}
			raw["transactions"] = encoded
		}
		if rewritten > 0 {
			notes = append(notes, fmt.Sprintf("%d recurrence end condition(s) normalized", rewritten))
		}
	}

	notes = append(notes, fmt.Sprintf("migrated from schema version %d to %d", version, schemaVersion))
	return notes, nil
}
