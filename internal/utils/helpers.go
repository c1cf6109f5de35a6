package utils

import (
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// EntryMap renders an entry with the same keys as the cache document.
func EntryMap(e entity.Entry) map[string]any {
	m := map[string]any{
		"category": strOrNil(e.Category),
		"index":    strOrNil(e.Index),
		"name":     strOrNil(e.Name),
		"issn":     strOrNil(e.ISSN),
		"eissn":    strOrNil(e.EISSN),
		"quartile": strOrNil(e.Quartile),
		"position": nil,
		"score":    nil,
	}
	if e.Position != nil {
		m["position"] = *e.Position
	}
	if e.Score != nil {
		m["score"] = *e.Score
	}
	return m
}

func ToPBEntry(e entity.Entry) (*structpb.Struct, error) {
	return structpb.NewStruct(EntryMap(e))
}

// ToPBEntries converts entries to a list value suitable for a Struct field.
func ToPBEntries(entries []entity.Entry) (*structpb.Value, error) {
	items := make([]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, EntryMap(e))
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, err
	}
	return structpb.NewListValue(list), nil
}

// FromPBEntry is the inverse of ToPBEntry.
func FromPBEntry(s *structpb.Struct) entity.Entry {
	var e entity.Entry
	str := func(key string) *string {
		if v, ok := s.GetFields()[key].GetKind().(*structpb.Value_StringValue); ok {
			return entity.Ptr(v.StringValue)
		}
		return nil
	}
	e.Category = str("category")
	e.Index = str("index")
	e.Name = str("name")
	e.ISSN = str("issn")
	e.EISSN = str("eissn")
	e.Quartile = str("quartile")
	if v, ok := s.GetFields()["position"].GetKind().(*structpb.Value_NumberValue); ok {
		e.Position = entity.Ptr(int(v.NumberValue))
	}
	if v, ok := s.GetFields()["score"].GetKind().(*structpb.Value_NumberValue); ok {
		e.Score = entity.Ptr(v.NumberValue)
	}
	return e
}

// StringField returns a trimmed string field, or "" when absent.
func StringField(s *structpb.Struct, key string) string {
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}

// IntField returns an integral number field. Absent fields yield def. Numbers
// may also be sent as strings, e.g. "2023".
func IntField(s *structpb.Struct, key string, def int) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return def, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return def, nil
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(k.NumberValue), nil
	case *structpb.Value_StringValue:
		var n int
		if _, err := fmt.Sscan(strings.TrimSpace(k.StringValue), &n); err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}
