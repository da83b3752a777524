package bufy

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// rawFields preserves JSON fields this version does not understand, so a
// file written by a newer version survives a load/save round trip intact.
type rawFields map[string]json.RawMessage

func (r rawFields) clone() rawFields {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// appendExtras writes preserved unknown fields in sorted key order, for
// deterministic output.
func (r rawFields) appendTo(w *jsonObjectWriter) {
	for _, k := range slices.Sorted(maps.Keys(r)) {
		w.Append(k, r[k])
	}
}

// pick extracts and removes a known key from a raw field map. A missing
// key leaves the destination untouched.
func pick(raw map[string]json.RawMessage, key string, v any) error {
	data, ok := raw[key]
	if !ok {
		return nil
	}
	delete(raw, key)
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// extras returns what is left of a raw field map after all known keys were
// picked, or nil when nothing unknown remains.
func extras(raw map[string]json.RawMessage) rawFields {
	if len(raw) == 0 {
		return nil
	}
	return rawFields(raw)
}

// --- enum codecs ---

func marshalString(s fmt.Stringer) ([]byte, error) { return json.Marshal(s.String()) }

func unmarshalString(data []byte) (string, error) {
	var s string
	err := json.Unmarshal(data, &s)
	return s, err
}

func (k AccountKind) MarshalJSON() ([]byte, error) { return marshalString(k) }

func (k *AccountKind) UnmarshalJSON(data []byte) error {
	s, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*k, err = ParseAccountKind(s)
	return err
}

func (k CategoryKind) MarshalJSON() ([]byte, error) { return marshalString(k) }

func (k *CategoryKind) UnmarshalJSON(data []byte) error {
	s, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*k, err = ParseCategoryKind(s)
	return err
}

func (s TransactionStatus) MarshalJSON() ([]byte, error) { return marshalString(s) }

func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*s, err = ParseTransactionStatus(v)
	return err
}

func (m RecurrenceMode) MarshalJSON() ([]byte, error) { return marshalString(m) }

func (m *RecurrenceMode) UnmarshalJSON(data []byte) error {
	s, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*m, err = ParseRecurrenceMode(s)
	return err
}

func (s RecurrenceStatus) MarshalJSON() ([]byte, error) { return marshalString(s) }

func (s *RecurrenceStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*s, err = ParseRecurrenceStatus(v)
	return err
}

func (k EndKind) MarshalJSON() ([]byte, error) { return marshalString(k) }

func (k *EndKind) UnmarshalJSON(data []byte) error {
	s, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*k, err = ParseEndKind(s)
	return err
}

func (s SimulationStatus) MarshalJSON() ([]byte, error) { return marshalString(s) }

func (s *SimulationStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*s, err = ParseSimulationStatus(v)
	return err
}

func (k ChangeKind) MarshalJSON() ([]byte, error) { return marshalString(k) }

func (k *ChangeKind) UnmarshalJSON(data []byte) error {
	s, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*k, err = ParseChangeKind(s)
	return err
}

// --- account ---

func (a Account) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("id", a.ID)
	w.Append("name", a.Name)
	w.Append("kind", a.Kind)
	w.Optional("currency", a.Currency)
	a.extra.appendTo(w)
	return w.MarshalJSON()
}

func (a *Account) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := pick(raw, "id", &a.ID); err != nil {
		return err
	}
	if err := pick(raw, "name", &a.Name); err != nil {
		return err
	}
	if err := pick(raw, "kind", &a.Kind); err != nil {
		return err
	}
	if err := pick(raw, "currency", &a.Currency); err != nil {
		return err
	}
	a.extra = extras(raw)
	return nil
}

// --- category ---

func (c Category) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("id", c.ID)
	w.Append("name", c.Name)
	w.Append("kind", c.Kind)
	optionalPtr(w, "parent", c.ParentID)
	c.extra.appendTo(w)
	return w.MarshalJSON()
}

func (c *Category) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := pick(raw, "id", &c.ID); err != nil {
		return err
	}
	if err := pick(raw, "name", &c.Name); err != nil {
		return err
	}
	if err := pick(raw, "kind", &c.Kind); err != nil {
		return err
	}
	if err := pick(raw, "parent", &c.ParentID); err != nil {
		return err
	}
	c.extra = extras(raw)
	return nil
}

// --- recurrence ---

func (e RecurrenceEnd) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("kind", e.Kind)
	if e.Kind == EndAfter {
		w.Append("count", e.Count)
	}
	if e.Kind == EndOn {
		w.Append("date", e.On)
	}
	return w.MarshalJSON()
}

func (e *RecurrenceEnd) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := pick(raw, "kind", &e.Kind); err != nil {
		return err
	}
	if err := pick(raw, "count", &e.Count); err != nil {
		return err
	}
	return pick(raw, "date", &e.On)
}

func (r Recurrence) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("seriesId", r.SeriesID)
	w.Append("startDate", r.Start)
	w.Append("interval", r.Interval)
	w.Append("mode", r.Mode)
	w.Append("end", r.End)
	if len(r.Exceptions) > 0 {
		w.Append("exceptions", r.Exceptions)
	}
	w.Append("status", r.Status)
	optionalPtr(w, "lastGeneratedDate", r.LastGenerated)
	optionalPtr(w, "lastCompletedDate", r.LastCompleted)
	w.Optional("generatedCount", r.Generated)
	optionalPtr(w, "nextScheduledDate", r.NextScheduled)
	r.extra.appendTo(w)
	return w.MarshalJSON()
}

func (r *Recurrence) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range map[string]any{
		"seriesId":          &r.SeriesID,
		"startDate":         &r.Start,
		"interval":          &r.Interval,
		"mode":              &r.Mode,
		"end":               &r.End,
		"exceptions":        &r.Exceptions,
		"status":            &r.Status,
		"lastGeneratedDate": &r.LastGenerated,
		"lastCompletedDate": &r.LastCompleted,
		"generatedCount":    &r.Generated,
		"nextScheduledDate": &r.NextScheduled,
	} {
		if err := pick(raw, key, v); err != nil {
			return err
		}
	}
	r.extra = extras(raw)
	return nil
}

// --- transaction ---

func (t Transaction) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("id", t.ID)
	w.Append("fromAccount", t.From)
	w.Append("toAccount", t.To)
	optionalPtr(w, "category", t.CategoryID)
	w.Append("scheduledDate", t.Scheduled)
	optionalPtr(w, "actualDate", t.Actual)
	w.Append("budgetedAmount", t.Budgeted)
	optionalPtr(w, "actualAmount", t.ActualAmount)
	w.Optional("currency", t.Currency)
	w.Optional("notes", t.Notes)
	w.Append("status", t.Status)
	if t.Recurrence != nil {
		w.Append("recurrence", t.Recurrence)
	}
	optionalPtr(w, "seriesId", t.SeriesID)
	t.extra.appendTo(w)
	return w.MarshalJSON()
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range map[string]any{
		"id":             &t.ID,
		"fromAccount":    &t.From,
		"toAccount":      &t.To,
		"category":       &t.CategoryID,
		"scheduledDate":  &t.Scheduled,
		"actualDate":     &t.Actual,
		"budgetedAmount": &t.Budgeted,
		"actualAmount":   &t.ActualAmount,
		"currency":       &t.Currency,
		"notes":          &t.Notes,
		"status":         &t.Status,
		"recurrence":     &t.Recurrence,
		"seriesId":       &t.SeriesID,
	} {
		if err := pick(raw, key, v); err != nil {
			return err
		}
	}
	t.extra = extras(raw)
	return nil
}

// --- simulation ---

func (p TransactionPatch) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	optionalPtr(w, "fromAccount", p.From)
	optionalPtr(w, "toAccount", p.To)
	optionalPtr(w, "category", p.CategoryID)
	optionalPtr(w, "scheduledDate", p.Scheduled)
	optionalPtr(w, "budgetedAmount", p.Budgeted)
	optionalPtr(w, "currency", p.Currency)
	optionalPtr(w, "notes", p.Notes)
	return w.MarshalJSON()
}

func (p *TransactionPatch) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range map[string]any{
		"fromAccount":    &p.From,
		"toAccount":      &p.To,
		"category":       &p.CategoryID,
		"scheduledDate":  &p.Scheduled,
		"budgetedAmount": &p.Budgeted,
		"currency":       &p.Currency,
		"notes":          &p.Notes,
	} {
		if err := pick(raw, key, v); err != nil {
			return err
		}
	}
	return nil
}

func (c SimulationChange) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("id", c.ID)
	w.Append("kind", c.Kind)
	optionalPtr(w, "target", c.Target)
	if c.Transaction != nil {
		w.Append("transaction", c.Transaction)
	}
	if c.Patch != nil {
		w.Append("patch", c.Patch)
	}
	return w.MarshalJSON()
}

func (c *SimulationChange) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range map[string]any{
		"id":          &c.ID,
		"kind":        &c.Kind,
		"target":      &c.Target,
		"transaction": &c.Transaction,
		"patch":       &c.Patch,
	} {
		if err := pick(raw, key, v); err != nil {
			return err
		}
	}
	return nil
}

func (s Simulation) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("id", s.ID)
	w.Append("name", s.Name)
	w.Optional("notes", s.Notes)
	w.Append("status", s.Status)
	w.Append("changes", s.Changes)
	w.Append("createdAt", s.CreatedAt)
	w.Append("updatedAt", s.UpdatedAt)
	optionalPtr(w, "appliedAt", s.AppliedAt)
	s.extra.appendTo(w)
	return w.MarshalJSON()
}

func (s *Simulation) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range map[string]any{
		"id":        &s.ID,
		"name":      &s.Name,
		"notes":     &s.Notes,
		"status":    &s.Status,
		"changes":   &s.Changes,
		"createdAt": &s.CreatedAt,
		"updatedAt": &s.UpdatedAt,
		"appliedAt": &s.AppliedAt,
	} {
		if err := pick(raw, key, v); err != nil {
			return err
		}
	}
	if s.Changes == nil {
		s.Changes = []SimulationChange{}
	}
	s.extra = extras(raw)
	return nil
}
