package pages

import (
	"time"

	"github.com/AngelCh415/marketops/internal/listing"
	"github.com/AngelCh415/marketops/internal/models"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStrings
	KindTime
)

// Field maps one record column onto a view key with a default for missing values.
type Field struct {
	View    string
	Column  string
	Kind    Kind
	Default any
}

func Str(view, column, def string) Field {
	return Field{View: view, Column: column, Kind: KindString, Default: def}
}
func Int(view, column string, def int) Field {
	return Field{View: view, Column: column, Kind: KindInt, Default: def}
}
func Float(view, column string, def float64) Field {
	return Field{View: view, Column: column, Kind: KindFloat, Default: def}
}
func Bool(view, column string, def bool) Field {
	return Field{View: view, Column: column, Kind: KindBool, Default: def}
}
func List(view, column string) Field {
	return Field{View: view, Column: column, Kind: KindStrings, Default: []string{}}
}
func Time(view, column string) Field {
	return Field{View: view, Column: column, Kind: KindTime}
}

func (f Field) value(rec models.Record) any {
	switch f.Kind {
	case KindInt:
		return rec.Fields.Int(f.Column, f.Default.(int))
	case KindFloat:
		return rec.Fields.Float(f.Column, f.Default.(float64))
	case KindBool:
		return rec.Fields.Bool(f.Column, f.Default.(bool))
	case KindStrings:
		return rec.Fields.Strings(f.Column, []string{})
	case KindTime:
		t := rec.Fields.Time(f.Column, rec.CreatedTime)
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	default:
		def, _ := f.Default.(string)
		return rec.Fields.String(f.Column, def)
	}
}

// mapRecord builds the view item: id, createdTime and every declared field.
func mapRecord(rec models.Record, fields []Field) listing.Item {
	it := listing.Item{"id": rec.ID}
	if !rec.CreatedTime.IsZero() {
		it["createdTime"] = rec.CreatedTime.UTC().Format(time.RFC3339)
	}
	for _, f := range fields {
		it[f.View] = f.value(rec)
	}
	return it
}
