package fem

// Kind names an annotation category.
type Kind string

const (
	KindComment  Kind = "comment"
	KindDelete   Kind = "delete"
	KindQuestion Kind = "question"
	KindExpand   Kind = "expand"
	KindKeep     Kind = "keep"
	KindUnclear  Kind = "unclear"
	KindChange   Kind = "change"

	// KindSuggest is the editor-facing name for KindChange. It has no
	// delimiters of its own and Parse never reports it.
	KindSuggest Kind = "suggest"
)

// Delimiters is the open/close token pair of one kind.
type Delimiters struct {
	Open  string
	Close string
}

// kinds is the fixed processing order used by Parse.
var kinds = []Kind{KindComment, KindDelete, KindQuestion, KindExpand, KindKeep, KindUnclear, KindChange}

// Markers maps annotation kind to its delimiters. This is the single source
// of truth for the marker syntax; Parse and Insert both read it.
var Markers = map[Kind]Delimiters{
	KindComment:  {Open: "{>>", Close: "<<}"},
	KindDelete:   {Open: "{--", Close: "--}"},
	KindQuestion: {Open: "{??", Close: "??}"},
	KindExpand:   {Open: "{!!", Close: "!!}"},
	KindKeep:     {Open: "{==", Close: "==}"},
	KindUnclear:  {Open: "{~~", Close: "~~}"},
	KindChange:   {Open: "{++", Close: "++}"},
}

// Prompts maps annotation kind to input prompt text.
var Prompts = map[Kind]string{
	KindComment:  "Comment:",
	KindDelete:   "Reason for deletion:",
	KindQuestion: "Question:",
	KindExpand:   "What to expand:",
	KindKeep:     "Reason to keep:",
	KindUnclear:  "What's unclear:",
	KindChange:   "Replacement text:",
}

// Kinds returns the annotation kinds in processing order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ValidKind reports whether k has a delimiter pair.
func ValidKind(k Kind) bool {
	_, ok := Markers[k]
	return ok
}

// NormalizeKind maps editor aliases onto canonical kinds.
func NormalizeKind(raw string) (Kind, bool) {
	k := Kind(raw)
	if k == KindSuggest {
		k = KindChange
	}
	if !ValidKind(k) {
		return "", false
	}
	return k, true
}

func (k Kind) String() string {
	return string(k)
}
