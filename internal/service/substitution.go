package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// placeholderPattern matches {{name}} with optional inner whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

const DefaultDateLayout = "02/01/2006"

// Renderer substitutes {{name}} tokens in message text. Tokens found in the
// supplied vars win; a fixed set of date and greeting tokens is computed from
// Now; anything else is left as written.
type Renderer struct {
	Location   *time.Location
	DateLayout string
	Now        func() time.Time
}

func NewRenderer(loc *time.Location, dateLayout string) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Renderer{Location: loc, DateLayout: dateLayout, Now: time.Now}
}

// Render substitutes tokens using the renderer's clock.
func (r *Renderer) Render(message string, vars map[string]string) string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return r.RenderAt(message, vars, now())
}

// RenderAt substitutes tokens with built-ins computed from t.
func (r *Renderer) RenderAt(message string, vars map[string]string, t time.Time) string {
	if !strings.Contains(message, "{{") {
		return message
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)

	return placeholderPattern.ReplaceAllStringFunc(message, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		if v, ok := lookupVar(vars, name); ok {
			return v
		}
		if v, ok := r.builtin(name, t); ok {
			return v
		}
		return token
	})
}

func lookupVar(vars map[string]string, name string) (string, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.ToLower(name)]
	return v, ok
}

func (r *Renderer) builtin(name string, t time.Time) (string, bool) {
	switch strings.ToLower(name) {
	case "date":
		layout := r.DateLayout
		if layout == "" {
			layout = DefaultDateLayout
		}
		return t.Format(layout), true
	case "time":
		return t.Format("15:04"), true
	case "day":
		return strconv.Itoa(t.Day()), true
	case "month":
		return strconv.Itoa(int(t.Month())), true
	case "year":
		return strconv.Itoa(t.Year()), true
	case "weekday":
		return t.Weekday().String(), true
	case "greeting":
		return Greeting(t), true
	}
	return "", false
}

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// Placeholders lists the distinct token names in message, in order of first appearance.
func Placeholders(message string) []string {
	names := []string{}
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(message, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
