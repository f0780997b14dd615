package router

import (
	"regexp"
	"testing"
)

func TestMatcher_Exact(t *testing.T) {
	m := Exact("/users")
	if !m.Match("/users") {
		t.Error("Match(/users) = false")
	}
	if m.Match("/users/") || m.Match("/Users") {
		t.Error("exact matcher accepted a non-identical path")
	}
	if m.String() != "/users" {
		t.Errorf("String() = %q", m.String())
	}
}

func TestMatcher_OneOf(t *testing.T) {
	m := OneOf("b.example.com", "a.example.com")
	if !m.Match("a.example.com") || !m.Match("b.example.com") {
		t.Error("OneOf rejected a member")
	}
	if m.Match("c.example.com") {
		t.Error("OneOf accepted a non-member")
	}
	if got := m.String(); got != "{a.example.com, b.example.com}" {
		t.Errorf("String() = %q", got)
	}
}

func TestMatcher_Pattern(t *testing.T) {
	m := Pattern(regexp.MustCompile(`^/u/\d+$`))
	if !m.Match("/u/42") {
		t.Error("Match(/u/42) = false")
	}
	if m.Match("/u/abc") {
		t.Error("pattern matcher accepted /u/abc")
	}
	if got := m.String(); got != `~^/u/\d+$` {
		t.Errorf("String() = %q", got)
	}
}

func TestMatcher_PatternAnchoredAtStart(t *testing.T) {
	m := Pattern(regexp.MustCompile(`/api`))
	if !m.Match("/api") || !m.Match("/api/v1") {
		t.Error("pattern rejected an input it matches at the start")
	}
	if m.Match("/v2/api") {
		t.Error("pattern matched mid-input; matches must begin at the start")
	}
	if got := m.String(); got != "~/api" {
		t.Errorf("String() = %q", got)
	}
}

func TestMatcher_Empty(t *testing.T) {
	if !Exact("").empty() {
		t.Error("Exact(\"\").empty() = false")
	}
	if !OneOf().empty() {
		t.Error("OneOf().empty() = false")
	}
	if (Matcher{}).empty() != true {
		t.Error("zero Matcher.empty() = false")
	}
	if Exact("/").empty() {
		t.Error("Exact(/).empty() = true")
	}
}
