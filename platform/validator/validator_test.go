package validator

import "testing"

type sampleForm struct {
	Email string `validate:"required,email"`
	Year  string `validate:"required,number"`
	Make  string `validate:"required"`
}

func TestFieldErrorsReportsEveryFailingField(t *testing.T) {
	val := New()

	err := val.Struct(sampleForm{Email: "nope", Year: "abc"})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	messages := map[string]string{
		"Email": "Valid email is required.",
		"Year":  "Year must be a number.",
	}
	fieldErrors := FieldErrors(err, messages)
	if len(fieldErrors) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(fieldErrors), fieldErrors)
	}

	byField := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		byField[fe.Field] = fe.Message
	}
	if byField["Email"] != "Valid email is required." {
		t.Fatalf("unexpected email message: %q", byField["Email"])
	}
	if byField["Year"] != "Year must be a number." {
		t.Fatalf("unexpected year message: %q", byField["Year"])
	}
	// Fields without a configured message fall back to a generic one.
	if byField["Make"] != "Make is invalid." {
		t.Fatalf("unexpected fallback message: %q", byField["Make"])
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	val := New()

	if err := val.Struct(sampleForm{Email: "a@b.com", Year: "2020", Make: "Toyota"}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	if fieldErrors := FieldErrors(nil, nil); fieldErrors != nil {
		t.Fatalf("expected nil for nil error, got %v", fieldErrors)
	}
}
