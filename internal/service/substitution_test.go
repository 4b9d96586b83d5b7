package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedRenderer(t time.Time) *Renderer {
	r := NewRenderer(time.UTC, "")
	r.Now = func() time.Time { return t }
	return r
}

func TestRender_NoTokensIsIdentity(t *testing.T) {
	r := fixedRenderer(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	inputs := []string{"", "plain text", "braces { but } no tokens", "{single} and {{ }}"}
	for _, in := range inputs {
		once := r.Render(in, map[string]string{"name": "Ana"})
		assert.Equal(t, in, once)
		assert.Equal(t, once, r.Render(once, map[string]string{"name": "Ana"}))
	}
}

func TestRender_SubstitutesVars(t *testing.T) {
	r := fixedRenderer(time.Now())
	out := r.Render("Hi {{name}}, your code is {{ code }}. Bye {{name}}!", map[string]string{
		"name": "Maria",
		"code": "A1",
	})
	assert.Equal(t, "Hi Maria, your code is A1. Bye Maria!", out)
}

func TestRender_CaseInsensitiveFallback(t *testing.T) {
	r := fixedRenderer(time.Now())
	out := r.Render("Hello {{Name}}", map[string]string{"name": "João"})
	assert.Equal(t, "Hello João", out)
}

func TestRender_UnknownTokensSurvive(t *testing.T) {
	r := fixedRenderer(time.Now())
	out := r.Render("Hi {{name}}, {{coupon}} {{ spaced }}", map[string]string{"name": "Ana"})
	assert.Equal(t, "Hi Ana, {{coupon}} {{ spaced }}", out)
}

func TestRender_Builtins(t *testing.T) {
	clock := time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC)
	r := fixedRenderer(clock)

	out := r.Render("{{greeting}}! Today is {{weekday}} {{date}} {{time}} ({{day}}/{{month}}/{{year}})", nil)
	assert.Equal(t, "Good afternoon! Today is Monday 19/10/2026 15:04 (19/10/2026)", out)
}

func TestRender_BuiltinsUseLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	r := NewRenderer(loc, "2006-01-02")
	// 02:00 UTC is still the previous evening in São Paulo
	out := r.RenderAt("{{greeting}} {{date}}", nil, time.Date(2026, 10, 20, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "Good evening 2026-10-19", out)
}

func TestRender_VarsWinOverBuiltins(t *testing.T) {
	r := fixedRenderer(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	out := r.Render("{{greeting}} {{date}}", map[string]string{"date": "amanhã"})
	assert.Equal(t, "Good morning amanhã", out)
}

func TestGreeting(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2026, 1, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Good morning", Greeting(day(0)))
	assert.Equal(t, "Good morning", Greeting(day(11)))
	assert.Equal(t, "Good afternoon", Greeting(day(12)))
	assert.Equal(t, "Good afternoon", Greeting(day(17)))
	assert.Equal(t, "Good evening", Greeting(day(18)))
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Hi {{name}}, {{ greeting }}! {{name}} {{custom.city}} {{}}")
	assert.Equal(t, []string{"name", "greeting", "custom.city"}, got)
	assert.Empty(t, Placeholders("no tokens"))
}
