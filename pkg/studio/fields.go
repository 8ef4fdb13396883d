package studio

// Widget identifies the inspector control used to edit a field. The set
// is closed: arbitrary template type strings map into one of these
// variants through WidgetFor, never through ad hoc string branching at
// render time.
type Widget int

const (
	// WidgetText is a free-form text input, also the fallback for
	// unrecognized type strings (templates declare domain port types such
	// as "Text" or "LanguageModel" on connectable fields).
	WidgetText Widget = iota
	// WidgetBoolean is a checkbox.
	WidgetBoolean
	// WidgetDropdown is a single-choice select.
	WidgetDropdown
	// WidgetMultiselect is a multi-choice select.
	WidgetMultiselect
	// WidgetPassword is a masked text input.
	WidgetPassword
	// WidgetNumber is a numeric input.
	WidgetNumber
	// WidgetCredentials is a dropdown fed by the stored credential list.
	WidgetCredentials
	// WidgetHandle marks a pure connection port with no editable control.
	WidgetHandle
)

// String returns the widget name.
func (w Widget) String() string {
	switch w {
	case WidgetBoolean:
		return "boolean"
	case WidgetDropdown:
		return "dropdown"
	case WidgetMultiselect:
		return "multiselect"
	case WidgetPassword:
		return "password"
	case WidgetNumber:
		return "number"
	case WidgetCredentials:
		return "credentials"
	case WidgetHandle:
		return "handle"
	default:
		return "text"
	}
}

// widgetByType is the dispatch table from declared field type strings
// to widgets.
var widgetByType = map[string]Widget{
	"boolean":     WidgetBoolean,
	"dropdown":    WidgetDropdown,
	"multiselect": WidgetMultiselect,
	"password":    WidgetPassword,
	"number":      WidgetNumber,
	"text":        WidgetText,
	"str":         WidgetText,
	"credentials": WidgetCredentials,
	"handle":      WidgetHandle,
}

// WidgetFor maps a field's declared type to its inspector widget. A
// field of unrecognized type that carries an option list renders as a
// dropdown; everything else falls back to plain text.
func WidgetFor(f Field) Widget {
	if w, ok := widgetByType[f.Type]; ok {
		return w
	}
	if len(f.Options) > 0 {
		return WidgetDropdown
	}
	return WidgetText
}

// Editable reports whether the field shows an inspector control at all.
// Handle-typed fields are ports only.
func Editable(f Field) bool {
	return WidgetFor(f) != WidgetHandle
}
