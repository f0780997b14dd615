package wire

import (
	"reflect"
	"testing"
)

func TestHeader_CaseInsensitive(t *testing.T) {
	h := NewHeader()
	h.Set("Content-Type", "text/html")

	if got := h.Get("content-type"); got != "text/html" {
		t.Errorf("Get(content-type) = %q", got)
	}
	if !h.Has("CONTENT-TYPE") {
		t.Error("Has(CONTENT-TYPE) = false")
	}

	// Re-setting under different casing replaces the value but keeps the
	// first-seen spelling for writes.
	h.Set("content-TYPE", "text/plain")
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	var names []string
	h.Each(func(key, value string) {
		names = append(names, key)
		if value != "text/plain" {
			t.Errorf("value = %q, want text/plain", value)
		}
	})
	if !reflect.DeepEqual(names, []string{"Content-Type"}) {
		t.Errorf("names = %v, want [Content-Type]", names)
	}
}

func TestHeader_EachInsertionOrder(t *testing.T) {
	h := NewHeader()
	h.Set("B", "2")
	h.Set("A", "1")
	h.Set("C", "3")

	var order []string
	h.Each(func(key, _ string) { order = append(order, key) })
	if !reflect.DeepEqual(order, []string{"B", "A", "C"}) {
		t.Errorf("order = %v, want [B A C]", order)
	}
}

func TestHeader_Del(t *testing.T) {
	h := NewHeader()
	h.Set("X-Keep", "1")
	h.Set("X-Drop", "2")

	h.Del("x-drop")
	if h.Has("X-Drop") {
		t.Error("X-Drop still present after Del")
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}

	h.Del("x-missing") // no-op
	if h.Len() != 1 {
		t.Errorf("Len() after deleting missing key = %d, want 1", h.Len())
	}
}

func TestHeader_NilReceiver(t *testing.T) {
	var h *Header
	if h.Get("x") != "" || h.Has("x") || h.Len() != 0 {
		t.Error("nil Header reads are not zero-valued")
	}
	h.Each(func(string, string) { t.Error("Each visited a nil Header") })
}

func TestStatusText(t *testing.T) {
	if got := StatusText(404); got != "NOT FOUND" {
		t.Errorf("StatusText(404) = %q, want NOT FOUND", got)
	}
	if got := StatusText(299); got != "299" {
		t.Errorf("StatusText(299) = %q, want 299", got)
	}
}
