package registration

// FieldKind selects the input widget for a form field
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldEmail  FieldKind = "email"
	FieldSelect FieldKind = "select"
)

// Field describes one form input
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Help     string
	Options  []string
	Required bool
}

// Variant is the field list a given major sees
type Variant struct {
	Major        Major
	CoursePrefix string
	Fields       []Field
}

func commonFields() []Field {
	return []Field{
		{Name: "full_name", Label: "Full Name", Kind: FieldText, Required: true},
		{Name: "student_id", Label: "FDU Student ID (7 digits)", Kind: FieldText, Required: true},
		{Name: "email", Label: "FDU Student Email (@student.fdu.edu or @fdu.edu)", Kind: FieldEmail, Required: true},
		{Name: "grade", Label: "Grade", Kind: FieldSelect, Options: toStrings(Grades), Required: true},
		{Name: "campus", Label: "Campus", Kind: FieldSelect, Options: toStrings(Campuses), Required: true},
		{Name: "major", Label: "Major", Kind: FieldSelect, Options: toStrings(Majors), Required: true},
	}
}

func courseFields(prefix string) []Field {
	return []Field{
		{Name: "course_name", Label: "Which class are you taking that relates to what you need help in?", Kind: FieldText, Required: true},
		{
			Name:     "course_id",
			Label:    "Course ID (Format: DEPT_####_##)",
			Kind:     FieldText,
			Help:     "Examples: " + prefix + "_2021_01, FIN_3250_02",
			Required: true,
		},
		{Name: "professor", Label: "Professor's Name", Kind: FieldText, Required: true},
		{Name: "professor_email", Label: "Professor's Email", Kind: FieldEmail, Required: true},
	}
}

var variants = map[Major]Variant{
	MajorAccounting: newVariant(MajorAccounting, "ACCT"),
	MajorFinance:    newVariant(MajorFinance, "FIN"),
	MajorMIS:        newVariant(MajorMIS, "MIS"),
}

func newVariant(m Major, prefix string) Variant {
	return Variant{
		Major:        m,
		CoursePrefix: prefix,
		Fields:       append(commonFields(), courseFields(prefix)...),
	}
}

// SchemaFor returns the form variant for major, falling back to the first major
func SchemaFor(m Major) Variant {
	if v, ok := variants[m]; ok {
		return v
	}
	return variants[Majors[0]]
}

func toStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}
