package ddns

import "testing"

func TestCatalog_InsertAtHead(t *testing.T) {
	c := NewCatalog()
	c.Insert(&Record{Name: "first"})
	c.Insert(&Record{Name: "second"})
	c.Insert(&Record{Name: "third"})

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	it := c.Iter()
	want := []string{"third", "second", "first"}
	for i, name := range want {
		r := it.Next()
		if r == nil {
			t.Fatalf("iterator exhausted at position %d", i)
		}
		if r.Name != name {
			t.Errorf("record %d = %q, want %q", i, r.Name, name)
		}
	}
	if r := it.Next(); r != nil {
		t.Errorf("iterator past the end returned %q, want nil", r.Name)
	}
}

func TestCatalog_IndependentIterators(t *testing.T) {
	c := NewCatalog()
	c.Insert(&Record{Name: "a"})
	c.Insert(&Record{Name: "b"})

	first := c.Iter()
	second := c.Iter()

	if r := first.Next(); r == nil || r.Name != "b" {
		t.Fatal("first iterator did not start at head")
	}
	// Advancing one cursor must not move the other.
	if r := second.Next(); r == nil || r.Name != "b" {
		t.Error("second iterator was affected by the first")
	}
	if r := first.Next(); r == nil || r.Name != "a" {
		t.Error("first iterator lost its position")
	}
}

func TestCatalog_EmptyIterator(t *testing.T) {
	c := NewCatalog()
	if r := c.Iter().Next(); r != nil {
		t.Errorf("empty catalog iterator returned %v, want nil", r)
	}
}

func TestCatalog_Drain(t *testing.T) {
	c := NewCatalog()
	rec := &Record{Name: "p", Creds: Credentials{Username: "u", Password: "s"}}
	if enc := rec.Creds.Encoded(); enc == "" {
		t.Fatal("expected encoded credentials")
	}
	c.Insert(rec)

	c.Drain()

	if c.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", c.Len())
	}
	if rec.Creds.encoded != "" {
		t.Error("Drain must release derived credential material")
	}
	if r := c.Iter().Next(); r != nil {
		t.Error("drained catalog must iterate as empty")
	}
}

func TestCredentials_Encoded(t *testing.T) {
	c := Credentials{Username: "example", Password: "secret"}
	// base64("example:secret")
	want := "ZXhhbXBsZTpzZWNyZXQ="
	if got := c.Encoded(); got != want {
		t.Errorf("Encoded() = %q, want %q", got, want)
	}
	// Cached on second call.
	if got := c.Encoded(); got != want {
		t.Errorf("second Encoded() = %q, want %q", got, want)
	}

	var empty Credentials
	if got := empty.Encoded(); got != "" {
		t.Errorf("empty credentials Encoded() = %q, want empty", got)
	}
}
