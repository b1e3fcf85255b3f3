package schema

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// decode unmarshals a record into a typed entity. Weak typing mirrors
// what upstream spreadsheet decoders hand us: numbers may arrive as
// strings and vice versa. List columns must already be parsed; decode
// replaces them so raw delimited text never reaches the typed entity.
func decode(rec Record, sch *EntitySchema, out any) error {
	prepared := make(map[string]any, len(rec))
	for k, v := range rec {
		prepared[k] = v
	}
	for _, f := range sch.Fields {
		switch f.Kind {
		case FieldList:
			items, err := ParseList(rec[f.Name])
			if err != nil {
				// Leave the column out entirely; the row validator has
				// already reported the parse failure.
				delete(prepared, f.Name)
				continue
			}
			prepared[f.Name] = items
		case FieldNumber:
			if !rec.Has(f.Name) {
				continue
			}
			n, err := rec.Number(f.Name)
			if err != nil {
				delete(prepared, f.Name)
				continue
			}
			prepared[f.Name] = n
		case FieldInteger:
			if !rec.Has(f.Name) {
				continue
			}
			n, err := rec.Integer(f.Name)
			if err != nil {
				delete(prepared, f.Name)
				continue
			}
			prepared[f.Name] = n
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(prepared); err != nil {
		return fmt.Errorf("failed to decode %s record: %w", sch.Entity, err)
	}
	return nil
}

// DecodeClient converts a record into a typed Client.
func DecodeClient(rec Record) (Client, error) {
	var c Client
	err := decode(rec, ClientSchema(), &c)
	return c, err
}

// DecodeWorker converts a record into a typed Worker.
func DecodeWorker(rec Record) (Worker, error) {
	var w Worker
	err := decode(rec, WorkerSchema(), &w)
	return w, err
}

// DecodeTask converts a record into a typed Task.
func DecodeTask(rec Record) (Task, error) {
	var t Task
	err := decode(rec, TaskSchema(), &t)
	return t, err
}
