package schema

// FieldKind describes how a column is validated and coerced.
type FieldKind int

// Field kinds.
const (
	FieldString FieldKind = iota
	FieldNumber
	FieldInteger
	FieldEnum
	FieldList
)

// Field describes one column of an entity schema.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool

	// Min / Max bound numeric fields when non-nil. Bounds are inclusive
	// except MinExclusive, which turns Min into a strict lower bound.
	Min          *float64
	Max          *float64
	MinExclusive bool

	// Enum lists the allowed values for FieldEnum columns.
	Enum []string

	// NonEmpty requires FieldList columns to parse to at least one element.
	NonEmpty bool
}

// EntitySchema describes the expected shape of one snapshot table.
type EntitySchema struct {
	Entity  Entity
	IDField string
	Fields  []Field
}

// Field returns the descriptor for the named column.
func (s *EntitySchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredFields returns the names of all required columns in schema order.
func (s *EntitySchema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

func floatPtr(v float64) *float64 { return &v }

func priorityEnum() []string {
	vals := make([]string, len(PriorityLevels))
	for i, p := range PriorityLevels {
		vals[i] = string(p)
	}
	return vals
}

// ClientSchema returns the schema descriptor for the clients table.
func ClientSchema() *EntitySchema {
	return &EntitySchema{
		Entity:  EntityClients,
		IDField: "ClientID",
		Fields: []Field{
			{Name: "ClientID", Kind: FieldString, Required: true},
			{Name: "Name", Kind: FieldString, Required: true},
			{Name: "Industry", Kind: FieldString},
			{Name: "PriorityLevel", Kind: FieldEnum, Enum: priorityEnum()},
			{Name: "Budget", Kind: FieldNumber, Min: floatPtr(0)},
			{Name: "Contact", Kind: FieldString},
		},
	}
}

// WorkerSchema returns the schema descriptor for the workers table.
func WorkerSchema() *EntitySchema {
	return &EntitySchema{
		Entity:  EntityWorkers,
		IDField: "WorkerID",
		Fields: []Field{
			{Name: "WorkerID", Kind: FieldString, Required: true},
			{Name: "Name", Kind: FieldString, Required: true},
			{Name: "Skills", Kind: FieldList, Required: true, NonEmpty: true},
			{Name: "MaxLoad", Kind: FieldInteger, Required: true, Min: floatPtr(0), MinExclusive: true},
			{Name: "CurrentLoad", Kind: FieldInteger, Min: floatPtr(0)},
			{Name: "Department", Kind: FieldString},
		},
	}
}

// TaskSchema returns the schema descriptor for the tasks table.
func TaskSchema() *EntitySchema {
	return &EntitySchema{
		Entity:  EntityTasks,
		IDField: "TaskID",
		Fields: []Field{
			{Name: "TaskID", Kind: FieldString, Required: true},
			{Name: "ClientID", Kind: FieldString, Required: true},
			{Name: "Name", Kind: FieldString},
			{Name: "Duration", Kind: FieldInteger, Required: true, Min: floatPtr(1)},
			{Name: "Priority", Kind: FieldEnum, Required: true, Enum: priorityEnum()},
			{Name: "Phase", Kind: FieldInteger, Min: floatPtr(1)},
			{Name: "Dependencies", Kind: FieldList},
			{Name: "RequiredSkills", Kind: FieldList, Required: true, NonEmpty: true},
		},
	}
}

// SchemaFor returns the schema descriptor for the given entity.
func SchemaFor(e Entity) *EntitySchema {
	switch e {
	case EntityClients:
		return ClientSchema()
	case EntityWorkers:
		return WorkerSchema()
	case EntityTasks:
		return TaskSchema()
	default:
		return nil
	}
}
