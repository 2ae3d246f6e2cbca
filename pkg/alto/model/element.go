package model

// Position carries the bounding-box attributes of an element exactly as they
// appear in the source file. The pipeline passes them through unchanged.
type Position struct {
	HPos     string
	VPos     string
	Width    string
	Height   string
	Baseline string
	Coords   string // PAGE polygon points, when present
}

// Tag is a structured annotation carried over from the source markup,
// such as a Transkribus custom tag on a PAGE region.
type Tag struct {
	Type  string
	Text  string
	Attrs map[string]string
}

// Element is one addressable unit of extracted text: a line, block or region,
// depending on parser configuration. ID, Text, Position, SourceFile and Tags
// are seed data set by the parser and never change afterwards. The mutable
// pipeline state (category, marks, audit trail, removal) is only reachable
// through methods so its invariants hold: removal is monotonic, the audit
// trail never shrinks, and a category is never implicitly cleared.
type Element struct {
	ID         string
	Text       string
	Position   Position
	SourceFile string
	Tags       []Tag

	working       string
	category      string
	categoryValue string
	hint          string
	matchValue    string
	matchedBy     []string
	marks         map[string]string
	removed       bool
}

// NewElement creates an element with the given seed data. The working text
// starts out equal to the parsed text.
func NewElement(id, text string, pos Position) *Element {
	return &Element{
		ID:       id,
		Text:     text,
		Position: pos,
		working:  text,
	}
}

// WorkingText returns the element's current working text. It starts out equal
// to Text and is only changed by scrub steps; Text itself is never rewritten.
func (e *Element) WorkingText() string { return e.working }

// SetWorkingText replaces the working text. Text is left untouched.
func (e *Element) SetWorkingText(s string) { e.working = s }

// Category returns the committed category label, or "" if none was committed.
func (e *Element) Category() string { return e.category }

// CategoryValue returns the value recorded with the committed category,
// typically a capture group or a dictionary value.
func (e *Element) CategoryValue() string { return e.categoryValue }

// SetCategory commits a category label and its value. A later call overwrites
// an earlier one (last write wins); there is no way to clear a category.
func (e *Element) SetCategory(label, value string) {
	e.category = label
	e.categoryValue = value
}

// Hint returns the provisional category candidate recorded by the last
// dictionary or entity tagging step. It is not committed until a categorize
// step runs.
func (e *Element) Hint() string { return e.hint }

// SetHint records a provisional category candidate.
func (e *Element) SetHint(h string) { e.hint = h }

// MatchValue returns the value recorded by the step that last selected this
// element: the first capture group of a find, or the first dictionary value.
func (e *Element) MatchValue() string { return e.matchValue }

// SetMatchValue records the value of the selecting step.
func (e *Element) SetMatchValue(v string) { e.matchValue = v }

// MatchedBy returns a copy of the audit trail: the identifiers of every
// operation that selected or mutated this element, in application order.
func (e *Element) MatchedBy() []string {
	out := make([]string, len(e.matchedBy))
	copy(out, e.matchedBy)
	return out
}

// AppendMatchedBy appends an operation identifier to the audit trail.
func (e *Element) AppendMatchedBy(op string) {
	e.matchedBy = append(e.matchedBy, op)
}

// Mark attaches a named parser datum to the element. An existing mark with
// the same name is overwritten.
func (e *Element) Mark(name, value string) {
	if e.marks == nil {
		e.marks = make(map[string]string)
	}
	e.marks[name] = value
}

// Marks returns a copy of the element's parser data.
func (e *Element) Marks() map[string]string {
	out := make(map[string]string, len(e.marks))
	for k, v := range e.marks {
		out[k] = v
	}
	return out
}

// Removed reports whether the element has been soft-deleted.
func (e *Element) Removed() bool { return e.removed }

// Remove soft-deletes the element. The element stays in the model so its
// audit trail remains inspectable, but it never reappears in a candidate
// pool or a normal export. There is no way to undo a removal.
func (e *Element) Remove() { e.removed = true }
