package device

// Field is one published state value: a typed scalar plus its
// display-ready rendering.
type Field struct {
	Key     string
	Value   any
	Display string
}

// Record is the ordered set of state fields produced for one device in one
// cycle. It replaces the device's entire published state set; the host
// performs the actual write.
type Record struct {
	fields []Field
	index  map[string]int
}

func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set appends or overwrites a field, preserving first-set order.
func (r *Record) Set(key string, value any, display string) {
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		r.fields[i].Display = display
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value, Display: display})
}

// SetText publishes a string value displayed as itself.
func (r *Record) SetText(key, value string) {
	r.Set(key, value, value)
}

// Get returns the field for key.
func (r *Record) Get(key string) (Field, bool) {
	i, ok := r.index[key]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Value returns the typed value for key, or nil.
func (r *Record) Value(key string) any {
	f, ok := r.Get(key)
	if !ok {
		return nil
	}
	return f.Value
}

// Fields returns the fields in publish order. Callers must not mutate.
func (r *Record) Fields() []Field {
	return r.fields
}

func (r *Record) Len() int {
	return len(r.fields)
}

// SetOnline publishes the generic on/off status with its display string.
func (r *Record) SetOnline(online bool, display string) {
	r.Set("onOffState", online, display)
}

// Online reports the published on/off status; devices with no record yet
// are offline.
func (r *Record) Online() bool {
	f, ok := r.Get("onOffState")
	if !ok {
		return false
	}
	v, _ := f.Value.(bool)
	return v
}

// Merge copies every field of other into r, preserving r's ordering for
// keys it already has.
func (r *Record) Merge(other *Record) {
	if other == nil {
		return
	}
	for _, f := range other.fields {
		r.Set(f.Key, f.Value, f.Display)
	}
}
