package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemValue is the collected value of one item. Text and radio items carry Text,
// checkbox items carry List.
type ItemValue struct {
	Type ItemType
	Text string
	List []string
}

// IsList reports whether the value is a list of selections
func (v ItemValue) IsList() bool {
	return v.Type == ItemTypeCheckbox
}

// String joins list values with ", "
func (v ItemValue) String() string {
	if !v.IsList() {
		return v.Text
	}
	var buf bytes.Buffer
	for i, s := range v.List {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s)
	}
	return buf.String()
}

type itemValueJSON struct {
	Type  ItemType        `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (v ItemValue) MarshalJSON() ([]byte, error) {
	var raw []byte
	var err error
	if v.IsList() {
		list := v.List
		if list == nil {
			list = []string{}
		}
		raw, err = json.Marshal(list)
	} else {
		raw, err = json.Marshal(v.Text)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(itemValueJSON{Type: v.Type, Value: raw})
}

func (v *ItemValue) UnmarshalJSON(data []byte) error {
	var aux itemValueJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.Type = aux.Type
	v.Text = ""
	v.List = nil
	if len(aux.Value) == 0 {
		return nil
	}
	if aux.Value[0] == '[' {
		return json.Unmarshal(aux.Value, &v.List)
	}
	return json.Unmarshal(aux.Value, &v.Text)
}

// ItemEntry is one labelled value inside a group
type ItemEntry struct {
	Label string
	Value ItemValue
}

// GroupData holds the collected items of one group in schema order
type GroupData struct {
	Title string
	Items []ItemEntry
}

// Item looks up an item value by label
func (g GroupData) Item(label string) (ItemValue, bool) {
	for _, it := range g.Items {
		if it.Label == label {
			return it.Value, true
		}
	}
	return ItemValue{}, false
}

// SubmissionData maps group title -> item label -> value, preserving insertion order.
// It serializes to a JSON object whose key order matches the checklist schema.
type SubmissionData []GroupData

// Group looks up a group by title
func (d SubmissionData) Group(title string) (GroupData, bool) {
	for _, g := range d {
		if g.Title == title {
			return g, true
		}
	}
	return GroupData{}, false
}

// Set stores value under group/label. An existing label in the same group is overwritten.
func (d *SubmissionData) Set(groupTitle, label string, value ItemValue) {
	gi := -1
	for i := range *d {
		if (*d)[i].Title == groupTitle {
			gi = i
			break
		}
	}
	if gi < 0 {
		*d = append(*d, GroupData{Title: groupTitle})
		gi = len(*d) - 1
	}
	group := &(*d)[gi]
	for i := range group.Items {
		if group.Items[i].Label == label {
			group.Items[i].Value = value
			return
		}
	}
	group.Items = append(group.Items, ItemEntry{Label: label, Value: value})
}

func (d SubmissionData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for gi, g := range d {
		if gi > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Title)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":{")
		for ii, it := range g.Items {
			if ii > 0 {
				buf.WriteByte(',')
			}
			label, err := json.Marshal(it.Label)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(it.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(label)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *SubmissionData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	var out SubmissionData
	for dec.More() {
		title, err := stringToken(dec)
		if err != nil {
			return err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		group := GroupData{Title: title}
		for dec.More() {
			label, err := stringToken(dec)
			if err != nil {
				return err
			}
			var v ItemValue
			if err := dec.Decode(&v); err != nil {
				return fmt.Errorf("item %q: %w", label, err)
			}
			group.Items = append(group.Items, ItemEntry{Label: label, Value: v})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		out = append(out, group)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*d = out
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("submission data: expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("submission data: expected key, got %v", tok)
	}
	return s, nil
}

// Value implements driver.Valuer
func (d SubmissionData) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (d *SubmissionData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("submission data: unsupported scan type %T", src)
	}
}
