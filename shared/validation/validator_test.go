package validation

import "testing"

type sample struct {
	Username string `json:"username" validate:"required_without_all=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

func TestValidatorStruct(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		fields, err := v.Struct(sample{Username: "alice", Password: "x"})
		if err != nil || fields != nil {
			t.Fatalf("Struct() = %v, %v; want nil, nil", fields, err)
		}
	})

	t.Run("reports each field in order", func(t *testing.T) {
		fields, err := v.Struct(sample{})
		if err != nil {
			t.Fatalf("Struct() error = %v", err)
		}
		if len(fields) != 2 {
			t.Fatalf("len(fields) = %d, want 2", len(fields))
		}
		if fields[0].Field != "Username" || fields[0].Tag != "required_without_all" {
			t.Fatalf("fields[0] = %+v", fields[0])
		}
		if fields[1].Field != "Password" || fields[1].Tag != "required" {
			t.Fatalf("fields[1] = %+v", fields[1])
		}
		if fields[1].Message == "" {
			t.Fatal("expected a translated message")
		}
	})

	t.Run("non struct", func(t *testing.T) {
		if _, err := v.Struct(42); err == nil {
			t.Fatal("expected error for non-struct input")
		}
	})
}
