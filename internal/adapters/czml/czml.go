// Package czml decodes the subset of CZML the viewer consumes: packet ids,
// names, descriptions, point markers and numeric custom properties.
package czml

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/satlens/internal/domain/model"
)

const documentID = "document"

// Document is a decoded CZML stream.
type Document struct {
	Name     string
	Entities []model.Entity
	// Skipped lists "id.property" for custom properties that are not numeric.
	Skipped []string
}

type packet struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Delete      bool                       `json:"delete"`
	Description json.RawMessage            `json:"description"`
	Point       json.RawMessage            `json:"point"`
	Properties  map[string]json.RawMessage `json:"properties"`
}

type stringValue struct {
	String string `json:"string"`
}

type numberValue struct {
	Interval string          `json:"interval"`
	Epoch    string          `json:"epoch"`
	Number   json.RawMessage `json:"number"`
}

// Decode reads a CZML document from r.
func Decode(r io.Reader) (Document, error) {
	var packets []packet
	if err := json.NewDecoder(r).Decode(&packets); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return build(packets)
}

// DecodeBytes decodes a CZML document held in memory.
func DecodeBytes(data []byte) (Document, error) {
	return Decode(bytes.NewReader(data))
}

// build merges packets by id in first-seen order; later packets override
// earlier values property by property.
func build(packets []packet) (Document, error) {
	var doc Document
	order := make([]string, 0, len(packets))
	byID := make(map[string]*model.Entity, len(packets))

	for i, p := range packets {
		if p.ID == documentID {
			doc.Name = p.Name
			continue
		}
		if p.ID == "" {
			return Document{}, fmt.Errorf("%w: packet %d has no id", ErrInvalidDocument, i)
		}
		if p.Delete {
			if _, ok := byID[p.ID]; ok {
				delete(byID, p.ID)
				order = removeID(order, p.ID)
			}
			continue
		}

		e, ok := byID[p.ID]
		if !ok {
			e = &model.Entity{ID: p.ID, Properties: map[string]model.Property{}}
			byID[p.ID] = e
			order = append(order, p.ID)
		}
		if p.Name != "" {
			e.Name = p.Name
		}
		if len(p.Description) > 0 {
			e.Description = decodeString(p.Description)
		}
		if len(p.Point) > 0 && !bytes.Equal(bytes.TrimSpace(p.Point), []byte("null")) {
			e.HasPoint = true
		}
		for name, raw := range p.Properties {
			prop, numeric, err := decodeProperty(raw)
			if err != nil {
				return Document{}, fmt.Errorf("%s.%s: %w", p.ID, name, err)
			}
			if !numeric {
				doc.Skipped = append(doc.Skipped, p.ID+"."+name)
				continue
			}
			e.Properties[name] = prop
		}
	}

	doc.Entities = make([]model.Entity, 0, len(order))
	for _, id := range order {
		doc.Entities = append(doc.Entities, *byID[id])
	}
	return doc, nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var sv stringValue
	if err := json.Unmarshal(raw, &sv); err == nil {
		return sv.String
	}
	return ""
}

// decodeProperty reports numeric=false for values that are not numbers,
// such as strings or booleans.
func decodeProperty(raw json.RawMessage) (model.Property, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return model.Property{}, false, nil
	}

	switch trimmed[0] {
	case '[':
		var items []numberValue
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return model.Property{}, false, nil
		}
		return decodeIntervals(items)
	case '{':
		var nv numberValue
		if err := json.Unmarshal(trimmed, &nv); err != nil || len(nv.Number) == 0 {
			return model.Property{}, false, nil
		}
		return decodeNumber(nv)
	}

	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return model.Property{}, false, nil
	}
	return model.Constant(v), true, nil
}

func decodeNumber(nv numberValue) (model.Property, bool, error) {
	var v float64
	if err := json.Unmarshal(nv.Number, &v); err == nil {
		return model.Constant(v), true, nil
	}

	var flat []float64
	if err := json.Unmarshal(nv.Number, &flat); err != nil {
		return model.Property{}, false, nil
	}
	if nv.Epoch == "" {
		return model.Property{}, false, fmt.Errorf("%w: sampled number without epoch", ErrInvalidProperty)
	}
	epoch, err := parseTime(nv.Epoch)
	if err != nil {
		return model.Property{}, false, err
	}
	if len(flat)%2 != 0 {
		return model.Property{}, false, fmt.Errorf("%w: odd sample array length %d", ErrInvalidProperty, len(flat))
	}
	offsets := make([]float64, 0, len(flat)/2)
	values := make([]float64, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		offsets = append(offsets, flat[i])
		values = append(values, flat[i+1])
	}
	p, err := model.Sampled(epoch, offsets, values)
	if err != nil {
		return model.Property{}, false, fmt.Errorf("%w: %w", ErrInvalidProperty, err)
	}
	return p, true, nil
}

func decodeIntervals(items []numberValue) (model.Property, bool, error) {
	intervals := make([]model.Interval, 0, len(items))
	for i, it := range items {
		var v float64
		if err := json.Unmarshal(it.Number, &v); err != nil {
			return model.Property{}, false, nil
		}
		start, end, err := parseInterval(it.Interval)
		if err != nil {
			return model.Property{}, false, fmt.Errorf("interval %d: %w", i, err)
		}
		intervals = append(intervals, model.Interval{Start: start, End: end, Value: v})
	}
	p, err := model.Intervals(intervals)
	if err != nil {
		return model.Property{}, false, fmt.Errorf("%w: %w", ErrInvalidProperty, err)
	}
	return p, true, nil
}

func parseInterval(s string) (time.Time, time.Time, error) {
	startStr, endStr, ok := strings.Cut(s, "/")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: interval %q", ErrInvalidProperty, s)
	}
	start, err := parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q: %w", ErrInvalidProperty, s, err)
	}
	return t, nil
}
